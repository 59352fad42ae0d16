// Package output provides context-aware output for wtp.
// Stdout is used for primary data output (tables, paths, JSON, YAML).
// Stderr (via log package) is used for diagnostics.
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"charm.land/lipgloss/v2"
	"gopkg.in/yaml.v3"
)

type ctxKey struct{}

// Format selects how structured data is printed.
type Format int

const (
	FormatTable Format = iota
	FormatJSON
	FormatYAML
)

// FormatFromFlags picks the format for --json / --yaml flags.
func FormatFromFlags(jsonOut, yamlOut bool) (Format, error) {
	switch {
	case jsonOut && yamlOut:
		return FormatTable, fmt.Errorf("--json and --yaml are mutually exclusive")
	case jsonOut:
		return FormatJSON, nil
	case yamlOut:
		return FormatYAML, nil
	default:
		return FormatTable, nil
	}
}

// Printer writes primary output (data, tables, paths, JSON) to stdout.
type Printer struct {
	w io.Writer
}

// New creates a new Printer writing to the given writer.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// WithPrinter attaches a Printer to the context.
func WithPrinter(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, ctxKey{}, &Printer{w: w})
}

// FromContext retrieves the Printer from context.
// Returns a Printer writing to os.Stdout if none is attached.
func FromContext(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return &Printer{w: os.Stdout}
}

// Print writes output without a newline.
func (p *Printer) Print(a ...any) {
	fmt.Fprint(p.w, a...)
}

// Printf writes formatted output.
func (p *Printer) Printf(format string, a ...any) {
	fmt.Fprintf(p.w, format, a...)
}

// Println writes a line of output.
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.w, a...)
}

// Styled writes pre-rendered lipgloss output, downsampling colors to what
// the writer supports (none when piped).
func (p *Printer) Styled(s string) {
	lipgloss.Fprint(p.w, s)
}

// JSON writes v as indented JSON.
func (p *Printer) JSON(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as YAML.
func (p *Printer) YAML(v any) error {
	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Structured writes v as JSON or YAML. It reports false for FormatTable so
// the caller renders its own table.
func (p *Printer) Structured(format Format, v any) (bool, error) {
	switch format {
	case FormatJSON:
		return true, p.JSON(v)
	case FormatYAML:
		return true, p.YAML(v)
	default:
		return false, nil
	}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}
