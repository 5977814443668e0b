package lens

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Format selects a lens renderer.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown lens format: %s (valid: text, json, yaml)", s)
	}
}

// Render writes lenses to w in the given format.
func Render(w io.Writer, lenses []Lens, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if lenses == nil {
			lenses = []Lens{}
		}
		return enc.Encode(lenses)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(lenses); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case FormatText, "":
		return renderText(w, lenses)
	default:
		return fmt.Errorf("unknown lens format: %s", format)
	}
}

// renderText groups lenses by file. Styling is dropped when w is not a terminal.
func renderText(w io.Writer, lenses []Lens) error {
	r := lipgloss.NewRenderer(w)
	fileStyle := r.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	titleStyle := r.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle := r.NewStyle().Faint(true)

	file := ""
	for _, l := range lenses {
		if l.File != file {
			if file != "" {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
			file = l.File
			if _, err := fmt.Fprintln(w, fileStyle.Render(file)); err != nil {
				return err
			}
		}
		targets := make([]string, len(l.Targets))
		for i, t := range l.Targets {
			targets[i] = fmt.Sprintf("%s %s", t.Name, dimStyle.Render(fmt.Sprintf("%s:%d", t.File, t.Line)))
		}
		_, err := fmt.Fprintf(w, "%5d  %s  %s -> %s\n",
			l.Line, titleStyle.Render(l.Title), l.Subject, strings.Join(targets, ", "))
		if err != nil {
			return err
		}
	}
	return nil
}
