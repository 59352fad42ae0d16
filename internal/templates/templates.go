// Package templates creates files from user-provided templates.
//
// Templates are plain files in the templates directory. Their content is
// rendered with text/template, so {{.Name}} and {{.Date}} can be used inside.
package templates

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"time"
)

// maxCreateAttempts bounds retries when a chosen name is taken concurrently.
const maxCreateAttempts = 100

// Template is a file in the templates directory.
type Template struct {
	Name string // file name without extension
	Ext  string // extension without dot, may be empty
	Path string
}

// Data is passed to a template when it is rendered.
type Data struct {
	Name string
	Date string // YYYY-MM-DD
}

// BuildFileName returns the first free file name in dir: "name.ext", then
// "name 2.ext", "name 3.ext" and so on.
func BuildFileName(dir, name, ext string) string {
	for n := 1; ; n++ {
		candidate := fileName(name, ext, n)
		if _, err := os.Lstat(filepath.Join(dir, candidate)); errors.Is(err, fs.ErrNotExist) {
			return candidate
		}
	}
}

func fileName(name, ext string, n int) string {
	base := name
	if n > 1 {
		base += " " + strconv.Itoa(n)
	}
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// List returns the templates in dir sorted by name. A missing directory
// yields no templates.
func List(dir string) ([]Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read templates: %w", err)
	}

	var out []Template
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		ext := strings.TrimPrefix(filepath.Ext(e.Name()), ".")
		out = append(out, Template{
			Name: strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())),
			Ext:  ext,
			Path: filepath.Join(dir, e.Name()),
		})
	}
	slices.SortFunc(out, func(a, b Template) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

// Find returns the template called name, matched with or without extension.
func Find(templates []Template, name string) (Template, bool) {
	for _, t := range templates {
		if t.Name == name || filepath.Base(t.Path) == name {
			return t, true
		}
	}
	return Template{}, false
}

// Create renders tpl into a new file in dir named after name and returns its
// path. Existing files are never overwritten.
func Create(dir, name string, tpl Template) (string, error) {
	raw, err := os.ReadFile(tpl.Path)
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}
	t, err := template.New(tpl.Name).Parse(string(raw))
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", tpl.Name, err)
	}
	var content bytes.Buffer
	if err := t.Execute(&content, Data{Name: name, Date: time.Now().Format(time.DateOnly)}); err != nil {
		return "", fmt.Errorf("render template %s: %w", tpl.Name, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	for range maxCreateAttempts {
		path := filepath.Join(dir, BuildFileName(dir, name, tpl.Ext))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		if _, err := f.Write(content.Bytes()); err != nil {
			f.Close()
			return "", err
		}
		return path, f.Close()
	}
	return "", fmt.Errorf("no free file name for %q in %s", name, dir)
}
