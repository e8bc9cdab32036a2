package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nukata/reduced-lisp-in-go"
)

const configFile = ".rlisp.yaml"

// Config holds the settings read from the configuration file.
type Config struct {
	MaxDepth           int      `yaml:"max_depth"`
	IncludePath        []string `yaml:"include_path"`
	HistoryFile        string   `yaml:"history_file"`
	Prompt             string   `yaml:"prompt"`
	ContinuationPrompt string   `yaml:"continuation_prompt"`
	Color              bool     `yaml:"color"`
	LogLevel           string   `yaml:"log_level"`
}

// DefaultConfig returns the settings used when there is no file.
func DefaultConfig() *Config {
	return &Config{
		MaxDepth:           rlisp.DefaultMaxDepth,
		IncludePath:        []string{"."},
		HistoryFile:        "~/.rlisp_history",
		Prompt:             "> ",
		ContinuationPrompt: "  ",
		Color:              true,
		LogLevel:           "warn",
	}
}

// LoadConfig reads the configuration at path over the defaults. An empty
// path means $HOME/.rlisp.yaml, which need not exist.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg.expandPaths(), nil
		}
		path = filepath.Join(home, configFile)
	}
	f, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg.expandPaths(), nil
		}
		return nil, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if _, err := cfg.Level(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg.expandPaths(), nil
}

// expandPaths replaces a leading ~ in the file settings with the home
// directory.
func (c *Config) expandPaths() *Config {
	c.HistoryFile = expandHome(c.HistoryFile)
	for i, p := range c.IncludePath {
		c.IncludePath[i] = expandHome(p)
	}
	return c
}

// Level returns the log level named in the configuration.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(c.LogLevel))
	return l, err
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
