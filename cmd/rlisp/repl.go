package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/peterh/liner"

	"github.com/nukata/reduced-lisp-in-go"
)

const (
	banner   = "Reduced Lisp 0.1"
	replHint = "type (help), (exit) to quit"
)

// repl reads, evaluates and prints until end of input or (exit).
// Unlike a file run, an error only abandons the form that caused it.
func repl(in *rlisp.Interp, cfg *Config) int {
	color := cfg.Color && liner.TerminalSupported()
	if color {
		fmt.Println(bold(banner))
		fmt.Println(cyan(replHint))
	} else {
		fmt.Println(banner)
		fmt.Println(replHint)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	if cfg.HistoryFile != "" {
		if f, err := os.Open(cfg.HistoryFile); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}
		defer saveHistory(ln, cfg.HistoryFile)
	}

	for {
		src, err := readInput(ln, cfg.Prompt, cfg.ContinuationPrompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				fmt.Fprintln(os.Stderr, "rlisp:", err)
			}
			fmt.Println()
			return 0
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if code, done := evalInput(in, src, os.Stdout, os.Stderr, color); done {
			return code
		}
	}
}

// readInput prompts until the parentheses read so far are balanced.
func readInput(ln *liner.State, prompt, more string) (string, error) {
	var b strings.Builder
	p := prompt
	for {
		line, err := ln.Prompt(p)
		if err != nil {
			return "", err
		}
		b.WriteString(line)
		b.WriteByte('\n')
		if complete(b.String()) {
			return b.String(), nil
		}
		p = more
	}
}

// complete reports whether src has no unclosed parentheses.
func complete(src string) bool {
	return rlisp.Depth(rlisp.Tokenize(src)) <= 0
}

// evalInput evaluates each form of src, printing every result that is not
// null. An interrupt cancels the form being evaluated. done is true when
// the session should end with the exit status code.
func evalInput(in *rlisp.Interp, src string, stdout, stderr io.Writer, color bool) (code int, done bool) {
	forms, err := rlisp.ParseString(src)
	if err == nil {
		err = rlisp.Validate(forms...)
	}
	if err != nil {
		report(stderr, err, color)
		return 0, false
	}
	for _, f := range forms {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		v, err := in.Eval(ctx, f)
		stop()
		if err != nil {
			var exit *rlisp.ExitError
			if errors.As(err, &exit) {
				return exit.Code, true
			}
			if errors.Is(err, context.Canceled) {
				fmt.Fprintln(stderr, "# interrupted")
			} else {
				report(stderr, err, color)
			}
			return 0, false
		}
		if v != rlisp.Null {
			s := v.String()
			if color {
				s = green(s)
			}
			fmt.Fprintln(stdout, s)
		}
	}
	return 0, false
}

func saveHistory(ln *liner.State, path string) {
	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer f.Close()
	ln.WriteHistory(f)
}
