package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/panbanda/augur/pkg/analyser"
	"github.com/panbanda/augur/pkg/ir"
	"github.com/panbanda/augur/pkg/results"
	"github.com/panbanda/augur/pkg/symbol"
)

// ResultsReport renders the simplified per-definition results of one target.
type ResultsReport struct {
	Target  string
	Results *results.FileResults
}

func (r *ResultsReport) RenderData() any {
	return r.Results
}

func (r *ResultsReport) RenderText(w io.Writer, colored bool) error {
	bold := color.New(color.Bold)
	for i, name := range r.Results.Names() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if colored {
			bold.Fprintln(w, name)
		} else {
			fmt.Fprintln(w, name)
		}
		fr, _ := r.Results.Get(name)
		writeNameList(w, "gets", fr.Gets)
		writeNameList(w, "sets", fr.Sets)
		writeNameList(w, "dels", fr.Dels)
		writeNameList(w, "calls", fr.Calls)
	}
	return nil
}

func (r *ResultsReport) RenderMarkdown(w io.Writer) error {
	fmt.Fprintf(w, "# Results for %s\n\n", r.Target)
	for _, name := range r.Results.Names() {
		fmt.Fprintf(w, "## `%s`\n\n", name)
		fr, _ := r.Results.Get(name)
		writeMarkdownList(w, "Gets", fr.Gets)
		writeMarkdownList(w, "Sets", fr.Sets)
		writeMarkdownList(w, "Dels", fr.Dels)
		writeMarkdownList(w, "Calls", fr.Calls)
	}
	return nil
}

func writeNameList(w io.Writer, label string, names []string) {
	fmt.Fprintf(w, "  %s:", label)
	if len(names) == 0 {
		fmt.Fprintln(w, " -")
		return
	}
	fmt.Fprintln(w)
	for _, n := range names {
		fmt.Fprintf(w, "    %s\n", n)
	}
}

func writeMarkdownList(w io.Writer, label string, names []string) {
	fmt.Fprintf(w, "**%s**\n\n", label)
	if len(names) == 0 {
		fmt.Fprintln(w, "_none_")
		fmt.Fprintln(w)
		return
	}
	for _, n := range names {
		fmt.Fprintf(w, "- `%s`\n", n)
	}
	fmt.Fprintln(w)
}

// IRReport renders the raw per-definition intermediate results, including
// those of followed imports.
type IRReport struct {
	Target    string
	FileIR    *ir.FileIR
	ImportsIR ir.ImportsIR
}

type irReportData struct {
	File    *ir.FileIR   `json:"file"`
	Imports ir.ImportsIR `json:"imports,omitempty"`
}

func (r *IRReport) RenderData() any {
	return irReportData{File: r.FileIR, Imports: r.ImportsIR}
}

func (r *IRReport) RenderText(w io.Writer, colored bool) error {
	r.renderFileText(w, colored, r.Target, r.FileIR)
	for _, module := range sortedModuleNames(r.ImportsIR) {
		fmt.Fprintln(w)
		r.renderFileText(w, colored, module, r.ImportsIR[module])
	}
	return nil
}

func (r *IRReport) renderFileText(w io.Writer, colored bool, heading string, fileIR *ir.FileIR) {
	if colored {
		color.New(color.Bold, color.Underline).Fprintln(w, heading)
	} else {
		fmt.Fprintln(w, heading)
		fmt.Fprintln(w, strings.Repeat("=", len(heading)))
	}
	for _, sym := range fileIR.Symbols() {
		funcIR, _ := fileIR.Get(sym)
		fmt.Fprintf(w, "%s\n", sym.ID())
		writeNameList(w, "gets", irNames(funcIR.Gets))
		writeNameList(w, "sets", irNames(funcIR.Sets))
		writeNameList(w, "dels", irNames(funcIR.Dels))
		writeNameList(w, "calls", irCalls(funcIR.Calls))
	}
}

func irNames(set map[string]symbol.Name) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func irCalls(set map[string]symbol.Call) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (r *IRReport) RenderMarkdown(w io.Writer) error {
	fmt.Fprintf(w, "# Intermediate results for %s\n\n", r.Target)
	r.renderFileMarkdown(w, r.Target, r.FileIR)
	for _, module := range sortedModuleNames(r.ImportsIR) {
		r.renderFileMarkdown(w, module, r.ImportsIR[module])
	}
	return nil
}

func (r *IRReport) renderFileMarkdown(w io.Writer, heading string, fileIR *ir.FileIR) {
	fmt.Fprintf(w, "## %s\n\n", heading)
	for _, sym := range fileIR.Symbols() {
		funcIR, _ := fileIR.Get(sym)
		fmt.Fprintf(w, "### `%s`\n\n", sym.ID())
		blob, err := funcIR.MarshalJSON()
		if err == nil {
			fmt.Fprintf(w, "```json\n%s\n```\n\n", blob)
		}
	}
}

// StatsReport renders the timing and size statistics of one analysis run.
type StatsReport struct {
	Target string
	Stats  *analyser.Stats
}

func (r *StatsReport) RenderData() any {
	return r.Stats
}

func (r *StatsReport) table() *Table {
	s := r.Stats
	rows := [][]string{
		{"Parse", formatDuration(s.ParseTime)},
		{"Root context", formatDuration(s.RootContextTime)},
		{"Imports", formatDuration(s.ImportsTime)},
		{"File analysis", formatDuration(s.FileTime)},
		{"Lines", fmt.Sprintf("%d", s.FileLines)},
		{"Imported lines", fmt.Sprintf("%d", s.Imports.Lines)},
		{"Imports followed", fmt.Sprintf("%d", s.Imports.Imports)},
		{"Unique imports", fmt.Sprintf("%d", s.Imports.UniqueImports)},
	}
	return NewTable(
		fmt.Sprintf("Statistics for %s", r.Target),
		[]string{"Metric", "Value"},
		rows,
		nil,
		s,
	)
}

func (r *StatsReport) RenderText(w io.Writer, colored bool) error {
	return r.table().RenderText(w, colored)
}

func (r *StatsReport) RenderMarkdown(w io.Writer) error {
	return r.table().RenderMarkdown(w)
}

func formatDuration(d time.Duration) string {
	return d.Round(10 * time.Microsecond).String()
}

func sortedModuleNames(importsIR ir.ImportsIR) []string {
	names := make([]string, 0, len(importsIR))
	for name := range importsIR {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
