package htmlcheck

import (
	"strings"
	"testing"
)

const goodPage = `<!DOCTYPE html>
<html>
<head>
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>body { margin: 0; }</style>
</head>
<body>
    <button>Start</button>
</body>
</html>`

func TestCheck_GoodPage(t *testing.T) {
	if issues := Check(goodPage); len(issues) != 0 {
		t.Errorf("unexpected issues: %v", issues)
	}
}

func TestCheck_FlagsAllViolations(t *testing.T) {
	issues := Check("<html><body><p>just text</p></body></html>")
	if len(issues) != 4 {
		t.Errorf("issues = %v, want 4 violations", issues)
	}
}

func TestEnforce_AddsDoctypeAndViewport(t *testing.T) {
	got := Enforce("<html><head></head><body><button>go</button></body></html>")
	if !strings.HasPrefix(got, "<!DOCTYPE html>") {
		t.Errorf("doctype not prepended: %q", got[:40])
	}
	if !strings.Contains(got, `<meta name="viewport"`) {
		t.Error("viewport not injected")
	}
}

func TestEnforce_CreatesHeadWhenMissing(t *testing.T) {
	got := Enforce("<html><body></body></html>")
	if !strings.Contains(got, "<head>") {
		t.Error("head section not created for viewport injection")
	}
}

func TestEnforce_Idempotent(t *testing.T) {
	once := Enforce(goodPage)
	twice := Enforce(once)
	if once != twice {
		t.Error("Enforce is not idempotent on a passing page")
	}
}
