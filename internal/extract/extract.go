// Package extract turns unpredictable LLM response text into structured data.
//
// Models asked for JSON routinely return markdown-fenced blocks, JSON with
// prose around it, or raw HTML where a JSON wrapper was requested. Extract
// tolerates all of that and only fails when no brace span or document marker
// of the expected shape exists at all.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Expect tells Extract which payload shape the calling stage wants.
type Expect string

const (
	ExpectStructured Expect = "structured"
	ExpectDocument   Expect = "document"
)

// PayloadKind tags the variant held by a Payload.
type PayloadKind string

const (
	KindStructured PayloadKind = "structured"
	KindDocument   PayloadKind = "document"
)

// Payload is the tagged result of one extraction attempt: either a parsed
// JSON object or a best-effort HTML document, never both.
type Payload struct {
	Kind     PayloadKind
	Object   map[string]any
	Document string
}

// Extract converts raw provider output into a Payload.
//
// raw may be a string, []byte, or a list of message parts (maps carrying a
// "text" key; other parts are stringified). The result is a Document when the
// text is, or embeds, an HTML document, and a Structured object otherwise.
// Failures are always a typed *Error.
func Extract(raw any, expect Expect) (*Payload, error) {
	text := strings.TrimSpace(Flatten(raw))
	if text == "" {
		return nil, &Error{Kind: ErrEmptyResponse, Msg: "provider returned empty content"}
	}

	text = stripFence(text)
	if text == "" {
		return nil, &Error{Kind: ErrEmptyResponse, Msg: "response contained only fence markers"}
	}

	// Document-shaped text wins regardless of what the caller asked for:
	// some stages accept either shape, and a raw HTML page is never valid JSON.
	if expect == ExpectDocument || looksLikeDocument(text) {
		if doc, ok := sliceDocument(text); ok {
			return &Payload{Kind: KindDocument, Document: doc}, nil
		}
		// No document markers at all. Some providers wrap the HTML as a JSON
		// property instead, so try structured extraction before giving up.
	}

	return extractStructured(text)
}

// Flatten normalizes provider output into one string. Lists of parts are
// concatenated; parts that are maps contribute their "text" value, everything
// else is stringified.
func Flatten(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case []any:
		var b strings.Builder
		for _, part := range v {
			if m, ok := part.(map[string]any); ok {
				if t, ok := m["text"].(string); ok {
					b.WriteString(t)
					continue
				}
			}
			fmt.Fprint(&b, part)
		}
		return b.String()
	default:
		return fmt.Sprint(v)
	}
}

// stripFence removes a surrounding triple-backtick fence. The language tag
// line is dropped only when it actually reads "json" or "html"
// (case-insensitive); anything else after the fence is real content.
func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	s := strings.TrimSpace(strings.Trim(text, "`"))
	line, rest, found := strings.Cut(s, "\n")
	tag := strings.ToLower(strings.TrimSpace(line))
	if tag == "json" || tag == "html" {
		if !found {
			return ""
		}
		return strings.TrimSpace(rest)
	}
	return s
}

// looksLikeDocument reports whether the text opens with a doctype or <html>
// tag, case-insensitive.
func looksLikeDocument(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	return strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html")
}

// sliceDocument cuts the HTML document out of text: from the first doctype or
// <html> marker through the last </html> tag inclusive, or to end of string
// when no closing tag exists.
func sliceDocument(text string) (string, bool) {
	lower := strings.ToLower(text)

	start := strings.Index(lower, "<!doctype")
	if htmlAt := strings.Index(lower, "<html"); htmlAt >= 0 && (start < 0 || htmlAt < start) {
		start = htmlAt
	}
	if start < 0 {
		return "", false
	}

	if end := strings.LastIndex(lower, "</html>"); end >= start {
		return text[start : end+len("</html>")], true
	}
	return text[start:], true
}

func extractStructured(text string) (*Payload, error) {
	span, ok := balancedSpan(text)
	if !ok {
		span, ok = widestSpan(text)
	}
	if !ok {
		if hasHTMLMarker(text) {
			return &Payload{Kind: KindDocument, Document: text}, nil
		}
		return nil, &Error{Kind: ErrNoJSONFound, Msg: "no JSON object found in response", Snippet: snippet(text)}
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(span), &obj); err != nil {
		// Common provider failure mode: raw HTML embedded where JSON was
		// requested. Reinterpret the candidate as a document instead of failing.
		if hasHTMLMarker(span) {
			return &Payload{Kind: KindDocument, Document: span}, nil
		}
		return nil, &Error{Kind: ErrJSONDecode, Msg: "JSON decode failed", Snippet: snippet(span), Err: err}
	}
	return &Payload{Kind: KindStructured, Object: obj}, nil
}

// balancedSpan scans for the first outer {...} pair containing at most one
// level of nested brace pairs. Braces inside JSON string literals are not
// understood; such input falls through to widestSpan. (Upgrading to a real
// tokenizer would change behavior the rest of the pipeline has never needed.)
func balancedSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
			if depth > 2 {
				return "", false
			}
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// widestSpan is the best-effort fallback: first '{' to last '}'.
func widestSpan(text string) (string, bool) {
	first := strings.IndexByte(text, '{')
	last := strings.LastIndexByte(text, '}')
	if first < 0 || last <= first {
		return "", false
	}
	return text[first : last+1], true
}

func hasHTMLMarker(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(lower, "<html") ||
		strings.Contains(lower, "<!doctype") ||
		strings.Contains(lower, "<style")
}
