package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestListModelFiles(t *testing.T) {
	d := t.TempDir()
	writeFile(t, d, "b-chat.gguf", "bb")
	writeFile(t, d, "a-chat.GGUF", "a")
	writeFile(t, d, "notes.txt", "ignore")
	if err := os.Mkdir(filepath.Join(d, "sub.gguf"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	files, err := listModelFiles(d)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 artifacts, got %d: %+v", len(files), files)
	}
	if files[0].Name != "a-chat.GGUF" || files[1].Name != "b-chat.gguf" {
		t.Fatalf("unexpected order: %+v", files)
	}
	if files[0].SizeBytes != 1 || files[1].SizeBytes != 2 {
		t.Fatalf("unexpected sizes: %+v", files)
	}
}

func TestListModelFilesMissingDir(t *testing.T) {
	if _, err := listModelFiles(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}

func TestModelsPresetsCommand(t *testing.T) {
	cmd := buildModelsCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"presets"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("default-chat -> chat-small")) {
		t.Fatalf("built-in preset missing from output:\n%s", out.String())
	}
}
