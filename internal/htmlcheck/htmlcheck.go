// Package htmlcheck validates and patches the single-file HTML constraints
// every generated simulation must satisfy: doctype, mobile viewport, at least
// one interactive control, and some styling.
package htmlcheck

import "strings"

const viewportTag = `<meta name="viewport" content="width=device-width, initial-scale=1.0">`

// Check returns the list of minimum-requirement violations in html.
// An empty slice means the document passes.
func Check(html string) []string {
	var issues []string

	lower := strings.ToLower(html)

	if !strings.Contains(lower, "<!doctype html>") {
		issues = append(issues, "Missing DOCTYPE declaration.")
	}
	if !strings.Contains(lower, `<meta name="viewport"`) {
		issues = append(issues, "Missing viewport meta tag for mobile.")
	}

	hasControls := false
	for _, marker := range []string{"<input", "<button", "<select", "onclick", "addEventListener"} {
		if strings.Contains(html, marker) {
			hasControls = true
			break
		}
	}
	if !hasControls {
		issues = append(issues, "No interactive controls found.")
	}

	if !strings.Contains(html, "<style>") && !strings.Contains(html, "style=") {
		issues = append(issues, "No styling found (inline or embedded).")
	}

	return issues
}

// Enforce patches the cheap-to-fix violations: inserts a viewport meta tag
// and prepends a doctype when missing. Content issues (no controls, no
// styling) are left for the review stage to score down.
func Enforce(html string) string {
	lower := strings.ToLower(html)

	if !strings.Contains(lower, `<meta name="viewport"`) {
		switch {
		case strings.Contains(html, "<head>"):
			html = strings.Replace(html, "<head>", "<head>\n    "+viewportTag, 1)
		case strings.Contains(html, "<HEAD>"):
			html = strings.Replace(html, "<HEAD>", "<HEAD>\n    "+viewportTag, 1)
		case strings.Contains(html, "<html>"):
			html = strings.Replace(html, "<html>", "<html>\n<head>\n    "+viewportTag+"\n</head>", 1)
		case strings.Contains(html, "<HTML>"):
			html = strings.Replace(html, "<HTML>", "<HTML>\n<head>\n    "+viewportTag+"\n</head>", 1)
		}
	}

	if !strings.Contains(strings.ToLower(html), "<!doctype") {
		html = "<!DOCTYPE html>\n" + html
	}

	return html
}
