// Package prompt renders the per-stage prompt templates. Templates are
// embedded so the binary is self-contained; they are Go text/templates over
// the fields of Params.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed templates/*.md
var templatesFS embed.FS

// Params carries the pipeline-state fields a stage template may reference.
// Stages declare what they need by which fields their template uses.
type Params struct {
	SpecJSON string // the concept spec, indented JSON
	Plan     string // planner blueprint, indented JSON
	HTML     string // current best HTML document
	Feedback string // student-feedback text to incorporate
}

// Render loads the template for the named stage and executes it with params.
func Render(stage string, params *Params) (string, error) {
	data, err := templatesFS.ReadFile("templates/" + stage + ".md")
	if err != nil {
		return "", fmt.Errorf("no prompt template for stage %s: %w", stage, err)
	}

	tmpl, err := template.New(stage).Parse(string(data))
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", stage, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("execute template %s: %w", stage, err)
	}
	return buf.String(), nil
}
