package rlisp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by a Loader that has no unit of a given name.
var ErrNotFound = errors.New("module not found")

// Loader resolves (include NAME) to bindings of the form "NAME.member".
type Loader interface {
	Load(ctx context.Context, in *Interp, name string) (map[string]Value, error)
}

// FileLoader looks for NAME.rl, then NAME.yaml, NAME.yml and NAME.json
// in each directory of Path in turn. An empty Path means the current
// directory.
//
// A .rl unit is evaluated with a fresh built-in table and exports every
// name it defines. A data unit must hold a mapping; numbers, booleans,
// nulls, strings and sequences become values and anything else is passed
// through as Foreign.
type FileLoader struct {
	Path []string
}

var dataExts = []string{".yaml", ".yml", ".json"}

// Load implements Loader.
func (l *FileLoader) Load(ctx context.Context, in *Interp, name string) (map[string]Value, error) {
	dirs := l.Path
	if len(dirs) == 0 {
		dirs = []string{"."}
	}
	for _, dir := range dirs {
		base := filepath.Join(dir, name)
		src, err := ReadFile(base + ".rl")
		if err == nil {
			return loadUnit(ctx, in, name, base+".rl", src)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		for _, ext := range dataExts {
			src, err := ReadFile(base + ext)
			if err == nil {
				return loadData(name, base+ext, src)
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}
	return nil, ErrNotFound
}

func loadUnit(ctx context.Context, in *Interp, name, path, src string) (map[string]Value, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		key = path
	}
	if in.loading[key] {
		return nil, fmt.Errorf("circular include of %s", path)
	}
	in.loading[key] = true
	defer delete(in.loading, key)

	unit := in.child()
	initial := unit.Globals.Clone()
	unit.Logger.Debug("loading unit", slog.String("path", path))
	if err := unit.Run(ctx, src); err != nil {
		return nil, err
	}
	out := map[string]Value{}
	for _, n := range unit.Globals.Names() {
		v, _ := unit.Globals.Own(n)
		if old, ok := initial.Own(n); ok {
			if b, ok := old.(*Builtin); ok && v == Value(b) {
				continue
			}
		}
		out[name+"."+n] = v
	}
	return out, nil
}

func loadData(name, path, src string) (map[string]Value, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	out := make(map[string]Value, len(doc))
	for k, v := range doc {
		out[name+"."+k] = FromHost(v)
	}
	return out, nil
}

//----------------------------------------------------------------------

// ReadSource reads a source text, honoring a UTF-8 or UTF-16 byte order
// mark and dropping it.
func ReadSource(r io.Reader) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	var b bytes.Buffer
	if _, err := io.Copy(&b, transform.NewReader(r, dec)); err != nil {
		return "", err
	}
	return b.String(), nil
}

// ReadFile reads the source text in a file.
func ReadFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return ReadSource(f)
}
