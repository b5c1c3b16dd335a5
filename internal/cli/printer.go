package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

type Printer struct {
	out    io.Writer
	errOut io.Writer
	json   bool
	quiet  bool
}

type PrinterOption func(*Printer)

func WithJSON(json bool) PrinterOption {
	return func(p *Printer) {
		p.json = json
	}
}

func WithQuiet(quiet bool) PrinterOption {
	return func(p *Printer) {
		p.quiet = quiet
	}
}

func WithOutput(out io.Writer) PrinterOption {
	return func(p *Printer) {
		p.out = out
	}
}

func WithErrOutput(errOut io.Writer) PrinterOption {
	return func(p *Printer) {
		p.errOut = errOut
	}
}

func NewPrinter(opts ...PrinterOption) *Printer {
	p := &Printer{
		out:    os.Stdout,
		errOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var (
	successIcon = color.GreenString("✓")
	errorIcon   = color.RedString("✗")
	infoIcon    = color.CyanString("→")
)

func (p *Printer) IsJSON() bool {
	return p.json
}

func (p *Printer) Printf(format string, args ...interface{}) {
	if p.quiet || p.json {
		return
	}
	fmt.Fprintf(p.out, format, args...)
}

func (p *Printer) Success(format string, args ...interface{}) {
	if p.quiet || p.json {
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", successIcon, fmt.Sprintf(format, args...))
}

func (p *Printer) Info(format string, args ...interface{}) {
	if p.quiet || p.json {
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", infoIcon, fmt.Sprintf(format, args...))
}

func (p *Printer) Error(format string, args ...interface{}) {
	if p.json {
		return
	}
	fmt.Fprintf(p.errOut, "%s %s\n", errorIcon, fmt.Sprintf(format, args...))
}

// JSON emits v as indented JSON regardless of quiet mode.
func (p *Printer) JSON(v interface{}) {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
