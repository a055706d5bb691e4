package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParse_RequiresName(t *testing.T) {
	_, err := Parse("---\ndefault_flow: main\nflows:\n  main: main.csml\n---\n")
	if err == nil {
		t.Fatal("expected error for missing name")
	}
}

func TestParse_RequiresDefaultFlowListed(t *testing.T) {
	_, err := Parse("---\nname: bot\ndefault_flow: missing\nflows:\n  main: main.csml\n---\n")
	if err == nil {
		t.Fatal("expected error when default_flow is not in flows")
	}
}

func TestParse_Valid(t *testing.T) {
	m, err := Parse("---\nname: greeter\ndefault_flow: main\nflows:\n  main: main.csml\n  help: help.csml\n---\nSome notes.\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Name != "greeter" || m.DefaultFlow != "main" {
		t.Errorf("unexpected identity: %+v", m)
	}
	if len(m.Flows) != 2 {
		t.Fatalf("expected 2 flows, got %d", len(m.Flows))
	}
	if m.Notes != "Some notes." {
		t.Errorf("expected notes to be captured, got %q", m.Notes)
	}
}

func TestParse_MissingFrontmatterDelimiter(t *testing.T) {
	_, err := Parse("name: greeter\n")
	if err == nil {
		t.Fatal("expected error for missing frontmatter delimiter")
	}
}

func TestLoad_AndLoadBot(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "bot.yaml")
	body := "---\nname: greeter\ndefault_flow: main\nflows:\n  main: main.csml\n---\n"
	if err := os.WriteFile(manifestPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	flowBody := "start: {\n  say \"hi\"\n}\n"
	if err := os.WriteFile(filepath.Join(dir, "main.csml"), []byte(flowBody), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(manifestPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	bot, err := m.LoadBot()
	if err != nil {
		t.Fatalf("LoadBot: %v", err)
	}
	if bot["main"] != flowBody {
		t.Errorf("unexpected flow source: %q", bot["main"])
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bot.yaml"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	paths, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("expected 1 manifest, got %d: %v", len(paths), paths)
	}
}

func TestDiscover_MissingDir(t *testing.T) {
	paths, err := Discover(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("expected no error for missing dir, got %v", err)
	}
	if paths != nil {
		t.Errorf("expected nil paths, got %v", paths)
	}
}
