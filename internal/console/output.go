// SPDX-FileCopyrightText: 2025 The Arch Manager Authors
// SPDX-License-Identifier: EUPL-1.2

// Package console renders response envelopes for humans (styled status
// lines) or machines (the raw JSON envelope).
package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/mttk2004/arch-manager/internal/protocol"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// Printer writes envelopes to a stream.
type Printer struct {
	writer io.Writer
	json   bool
	color  bool
}

// NewPrinter creates a printer for stdout. JSON mode emits the wire
// envelope verbatim; otherwise output is a styled human summary. Color
// follows no-color.org: disabled when NO_COLOR is set, TERM is dumb, or
// stdout is not a terminal.
func NewPrinter(jsonMode bool) *Printer {
	return &Printer{
		writer: os.Stdout,
		json:   jsonMode,
		color:  colorEnabled(),
	}
}

// NewPrinterWithWriter creates a printer with a custom writer for testing.
func NewPrinterWithWriter(writer io.Writer, jsonMode, color bool) *Printer {
	return &Printer{
		writer: writer,
		json:   jsonMode,
		color:  color,
	}
}

func colorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}

	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Print renders one envelope. The returned error is a transport failure
// (the only failure class that maps to a non-zero process exit).
func (p *Printer) Print(env *protocol.Envelope) error {
	if p.json {
		raw, err := env.Encode()
		if err != nil {
			return err
		}

		if _, err := fmt.Fprintln(p.writer, string(raw)); err != nil {
			return fmt.Errorf("write envelope: %w", err)
		}

		return nil
	}

	if _, err := fmt.Fprintln(p.writer, p.headline(env)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	p.printDetail(env)

	return nil
}

func (p *Printer) headline(env *protocol.Envelope) string {
	var symbol, label string

	switch env.Status {
	case protocol.StatusSuccess:
		symbol, label = "✓", "success"
	case protocol.StatusWarning:
		symbol, label = "!", "warning"
	case protocol.StatusError:
		symbol, label = "✗", "error"
	case protocol.StatusInfo:
		symbol, label = "i", "info"
	}

	prefix := fmt.Sprintf("%s %s", symbol, strings.ToUpper(label))
	if p.color {
		prefix = p.style(env.Status).Render(prefix)
	}

	return fmt.Sprintf("%s %s", prefix, env.Message)
}

func (p *Printer) style(status protocol.Status) lipgloss.Style {
	switch status {
	case protocol.StatusSuccess:
		return successStyle
	case protocol.StatusWarning:
		return warningStyle
	case protocol.StatusError:
		return errorStyle
	default:
		return infoStyle
	}
}

func (p *Printer) printDetail(env *protocol.Envelope) {
	if env.Error != nil {
		fmt.Fprintf(p.writer, "  code: %s\n", env.Error.Code)

		if remedy, ok := env.Error.Details["remedy"].(string); ok && remedy != "" {
			fmt.Fprintf(p.writer, "  %s\n", p.dim(remedy))
		}

		return
	}

	if result, ok := env.Data.(*protocol.BatchResult); ok {
		p.printBatch(result)
	}
}

func (p *Printer) printBatch(result *protocol.BatchResult) {
	if len(result.Succeeded) > 0 {
		fmt.Fprintf(p.writer, "  succeeded: %s\n", strings.Join(result.Succeeded, ", "))
	}

	if len(result.AlreadyInState) > 0 {
		fmt.Fprintf(p.writer, "  already in desired state: %s\n", strings.Join(result.AlreadyInState, ", "))
	}

	for _, item := range result.Failed {
		line := item
		if reason, ok := result.FailureReasons[item]; ok {
			line = fmt.Sprintf("%s (%s)", item, reason)
		}

		fmt.Fprintf(p.writer, "  failed: %s\n", line)
	}
}

func (p *Printer) dim(text string) string {
	if p.color {
		return dimStyle.Render(text)
	}

	return text
}
