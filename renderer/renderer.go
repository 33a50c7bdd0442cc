// Package renderer formats ledger and capital gains data as markdown reports.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/cgt"
)

//go:embed templates/*.md
var templates embed.FS

// RenderTaxSummary renders one summary block per tax year.
func RenderTaxSummary(summaries []cgt.YearSummary) string {
	if len(summaries) == 0 {
		return "# Capital Gains Tax Summary\n\nNo disposals.\n"
	}
	partials := map[string]string{
		"summary": "templates/summary.md",
	}
	return renderTemplate("taxSummary", "templates/tax_summary.md", partials, summaries)
}

// renderSummary renders the summary block of a single tax year.
func renderSummary(s cgt.YearSummary) string {
	return renderTemplate("summary", "templates/summary.md", nil, s)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
