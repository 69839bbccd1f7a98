package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCollectSpecs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"friction.json", "gravity.json", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.json"), 0755); err != nil {
		t.Fatal(err)
	}

	specs, err := collectSpecs(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(specs) != 2 {
		t.Fatalf("got %d specs, want 2: %v", len(specs), specs)
	}
	for _, s := range specs {
		if filepath.Ext(s) != ".json" {
			t.Errorf("non-json spec collected: %s", s)
		}
	}
}

func TestRootCommandWiring(t *testing.T) {
	want := map[string]bool{
		"generate": false, "batch": false, "history": false,
		"preview": false, "serve": false,
	}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}
