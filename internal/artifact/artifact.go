// Package artifact owns the per-run output directory and the durable files
// written into it. Every pipeline stage persists exactly one artifact, even on
// failure, so a run can always be inspected after the fact.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultRoot is the default root directory for run outputs.
const DefaultRoot = "output"

// Run is one run's output directory. The directory is append-only and
// single-writer: each run gets its own timestamped location.
type Run struct {
	Dir string
}

// NewRun creates a fresh timestamped directory under root, e.g.
// output/2026-08-31_14-05-12/. When two runs start within the same second a
// numeric suffix keeps the directories from colliding.
func NewRun(root string) (*Run, error) {
	if root == "" {
		root = DefaultRoot
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create output root: %w", err)
	}

	stamp := time.Now().Format("2006-01-02_15-04-05")
	for i := 0; ; i++ {
		dir := filepath.Join(root, stamp)
		if i > 0 {
			dir = filepath.Join(root, fmt.Sprintf("%s_%d", stamp, i))
		}
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return &Run{Dir: dir}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create run dir: %w", err)
		}
	}
}

// Open wraps an existing run directory without creating anything.
func Open(dir string) *Run {
	return &Run{Dir: dir}
}

// WriteText writes a raw text artifact.
func (r *Run) WriteText(filename, content string) error {
	path := filepath.Join(r.Dir, filename)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write artifact %s: %w", filename, err)
	}
	return nil
}

// WriteJSON writes data as an indented JSON artifact.
func (r *Run) WriteJSON(filename string, data any) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact %s: %w", filename, err)
	}
	return r.WriteText(filename, string(raw))
}

// Read returns a typed JSON artifact from the run directory, or nil when the
// file does not exist.
func Read[T any](r *Run, filename string) (*T, error) {
	path := filepath.Join(r.Dir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read artifact %s: %w", filename, err)
	}
	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse artifact %s: %w", filename, err)
	}
	return &result, nil
}

// RawFilename returns the raw-response artifact name for a stage,
// e.g. "1_plan_raw.txt".
func RawFilename(index int, stage string) string {
	return fmt.Sprintf("%d_%s_raw.txt", index, stage)
}

// OutputFilename returns the extracted-output artifact name for a stage.
// ext is "json" or "html" depending on the stage's payload shape.
func OutputFilename(index int, stage, ext string) string {
	return fmt.Sprintf("%d_%s_output.%s", index, stage, ext)
}

// ErrorFilename returns the error artifact name for a stage.
func ErrorFilename(index int, stage string) string {
	return fmt.Sprintf("%d_%s_error.txt", index, stage)
}
