package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Terryzhang-jp/floorplan-label-maker/floorplan"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

type printer interface {
	Print(outcomes []outcome) error
}

func newPrinter(format string, w io.Writer) (printer, error) {
	switch strings.ToLower(format) {
	case "text", "":
		return newTextPrinter(w), nil
	case "json":
		return &jsonPrinter{w: w}, nil
	case "yaml", "yml":
		return &yamlPrinter{w: w}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s (use text, json or yaml)", format)
	}
}

// report is the machine-readable form of an outcome.
type report struct {
	Image     string            `json:"image" yaml:"image"`
	RequestID string            `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	Model     string            `json:"model,omitempty" yaml:"model,omitempty"`
	Result    *floorplan.Result `json:"result,omitempty" yaml:"result,omitempty"`
	Issues    []floorplan.Issue `json:"issues,omitempty" yaml:"issues,omitempty"`
	Usage     *usageReport      `json:"usage,omitempty" yaml:"usage,omitempty"`
	Error     string            `json:"error,omitempty" yaml:"error,omitempty"`
}

type usageReport struct {
	InputTokens  int64   `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int64   `json:"output_tokens" yaml:"output_tokens"`
	TotalTokens  int64   `json:"total_tokens" yaml:"total_tokens"`
	CostUSD      float64 `json:"cost_usd" yaml:"cost_usd"`
}

func toReports(outcomes []outcome) []report {
	reports := make([]report, 0, len(outcomes))
	for _, o := range outcomes {
		r := report{Image: o.Image, Issues: o.Issues}
		if o.Err != nil {
			r.Error = o.Err.Error()
		}
		if a := o.Analysis; a != nil {
			r.RequestID = a.RequestID
			r.Model = a.Model
			r.Result = a.Result
			r.Usage = &usageReport{
				InputTokens:  a.Usage.InputTokens,
				OutputTokens: a.Usage.OutputTokens,
				TotalTokens:  a.Usage.TotalTokens,
				CostUSD:      a.Usage.CostUSD,
			}
		}
		reports = append(reports, r)
	}
	return reports
}

type jsonPrinter struct {
	w io.Writer
}

func (p *jsonPrinter) Print(outcomes []outcome) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(toReports(outcomes))
}

type yamlPrinter struct {
	w io.Writer
}

func (p *yamlPrinter) Print(outcomes []outcome) error {
	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	if err := enc.Encode(toReports(outcomes)); err != nil {
		return err
	}
	return enc.Close()
}

type textPrinter struct {
	w         io.Writer
	title     lipgloss.Style
	heading   lipgloss.Style
	errStyle  lipgloss.Style
	warnStyle lipgloss.Style
	dimStyle  lipgloss.Style
}

func newTextPrinter(w io.Writer) *textPrinter {
	r := lipgloss.NewRenderer(w)
	return &textPrinter{
		w:         w,
		title:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		heading:   r.NewStyle().Bold(true),
		errStyle:  r.NewStyle().Foreground(lipgloss.Color("196")),
		warnStyle: r.NewStyle().Foreground(lipgloss.Color("214")),
		dimStyle:  r.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

func (p *textPrinter) Print(outcomes []outcome) error {
	rule := strings.Repeat("-", 50)
	var b strings.Builder

	for i, o := range outcomes {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s\n", p.title.Render("Analyzing floor plan: "+filepath.Base(o.Image)))
		fmt.Fprintf(&b, "%s\n", rule)

		if o.Err != nil {
			fmt.Fprintf(&b, "%s\n", p.errStyle.Render(o.Err.Error()))
			b.WriteString("Analysis failed. Please check the error message above.\n")
			continue
		}

		result := o.Analysis.Result
		fmt.Fprintf(&b, "\n%s\n%s\n", p.heading.Render("Analysis Results:"), rule)

		fmt.Fprintf(&b, "\n%s\n", p.heading.Render("Interior Features (ranked by uniqueness):"))
		writeNumbered(&b, result.Interior)

		if result.HasExterior() {
			fmt.Fprintf(&b, "\n%s\n", p.heading.Render("Exterior Features (ranked by uniqueness):"))
			writeNumbered(&b, result.Exterior)
		}

		if len(o.Issues) > 0 {
			fmt.Fprintf(&b, "\n%s\n", p.warnStyle.Render("Warnings:"))
			for _, issue := range o.Issues {
				fmt.Fprintf(&b, "%s\n", p.warnStyle.Render("- "+issue.String()))
			}
		}

		u := o.Analysis.Usage
		fmt.Fprintf(&b, "\n%s\n", p.dimStyle.Render(fmt.Sprintf(
			"Model: %s | Tokens: %d in / %d out / %d total | Cost: $%.6f",
			o.Analysis.Model, u.InputTokens, u.OutputTokens, u.TotalTokens, u.CostUSD)))
	}

	_, err := io.WriteString(p.w, b.String())
	return err
}

func writeNumbered(b *strings.Builder, features []string) {
	for i, feature := range features {
		fmt.Fprintf(b, "%d. %s\n", i+1, feature)
	}
}
