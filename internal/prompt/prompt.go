// Package prompt resolves the system prompt injected in front of every conversation.
package prompt

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
)

//go:embed prompts/default.md
var defaultPrompt string

// ErrEmpty is returned when every source resolves to blank text.
var ErrEmpty = errors.New("system prompt is empty")

// Source tells where the resolved prompt came from. Logged at startup.
type Source string

const (
	SourceInline   Source = "inline"
	SourceFile     Source = "file"
	SourceEmbedded Source = "embedded"
)

// Default returns the prompt bundled with the binary.
func Default() string { return defaultPrompt }

// Resolve picks the prompt in order: inline text, then file contents, then the
// embedded default. The result is read once at startup and never changes.
func Resolve(inline, path string) (string, Source, error) {
	if strings.TrimSpace(inline) != "" {
		return inline, SourceInline, nil
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return "", SourceFile, fmt.Errorf("read system prompt file: %w", err)
		}
		if strings.TrimSpace(string(b)) == "" {
			return "", SourceFile, fmt.Errorf("%s: %w", path, ErrEmpty)
		}
		return string(b), SourceFile, nil
	}
	if strings.TrimSpace(defaultPrompt) == "" {
		return "", SourceEmbedded, ErrEmpty
	}
	return defaultPrompt, SourceEmbedded, nil
}
