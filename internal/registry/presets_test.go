package registry

import (
	"os"
	"path/filepath"
	"testing"

	"modelhostd/internal/scale"
)

func TestDefaultsResolve(t *testing.T) {
	p := Defaults()
	if got := p.Resolve("default-chat"); got != scale.ModelChatLight {
		t.Fatalf("default-chat resolved to %q", got)
	}
	if got := p.Resolve("my-model.gguf"); got != "my-model.gguf" {
		t.Fatalf("concrete id should pass through, got %q", got)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "presets.yaml")
	data := "default-chat: chat-custom\nfast-embed: embedding-nano\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write presets: %v", err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := p.Resolve("default-chat"); got != "chat-custom" {
		t.Fatalf("override not applied, got %q", got)
	}
	if got := p.Resolve("fast-embed"); got != "embedding-nano" {
		t.Fatalf("new alias not applied, got %q", got)
	}
	if got := p.Resolve("default-embedding"); got != "embedding-mini" {
		t.Fatalf("builtin lost after merge, got %q", got)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	p, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(p.List()) == 0 {
		t.Fatalf("expected builtin aliases")
	}
}

func TestLoadRejectsMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "presets.yaml")
	if err := os.WriteFile(path, []byte("default-chat: \"\"\n"), 0o644); err != nil {
		t.Fatalf("write presets: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error on empty target")
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error on missing file")
	}
}

func TestListReturnsCopy(t *testing.T) {
	p := Defaults()
	l := p.List()
	l["default-chat"] = "mutated"
	if p.Resolve("default-chat") == "mutated" {
		t.Fatalf("alias table mutated via List copy")
	}
}
