package prompt

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "persona.txt")
	if err := os.WriteFile(file, []byte("You are a concise bilingual assistant."), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Run("inline wins over file", func(t *testing.T) {
		got, src, err := Resolve("inline persona", file)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "inline persona" || src != SourceInline {
			t.Errorf("got %q from %s", got, src)
		}
	})

	t.Run("file when no inline", func(t *testing.T) {
		got, src, err := Resolve("   ", file)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "You are a concise bilingual assistant." || src != SourceFile {
			t.Errorf("got %q from %s", got, src)
		}
	})

	t.Run("embedded default", func(t *testing.T) {
		got, src, err := Resolve("", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if src != SourceEmbedded || got != Default() {
			t.Errorf("expected embedded default, got source %s", src)
		}
		if !strings.Contains(got, "déglutition") {
			t.Error("embedded prompt content unexpected")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := Resolve("", filepath.Join(dir, "nope.txt"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("err = %v, want ErrNotExist", err)
		}
	})

	t.Run("blank file", func(t *testing.T) {
		blank := filepath.Join(dir, "blank.txt")
		if err := os.WriteFile(blank, []byte("\n\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		_, _, err := Resolve("", blank)
		if !errors.Is(err, ErrEmpty) {
			t.Errorf("err = %v, want ErrEmpty", err)
		}
	})
}
