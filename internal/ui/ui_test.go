package ui

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/varsilias/persona-proxy/internal/logging"
)

func TestHTML(t *testing.T) {
	u := New(logging.Discard())

	tests := []struct {
		name    string
		src     string
		want    []string
		notWant []string
	}{
		{
			name: "headings and paragraphs",
			src:  "# Texture modifiée\n\nPrivilégiez les purées lisses.",
			want: []string{"<h1", "Texture modifiée", "<p>Privilégiez les purées lisses.</p>"},
		},
		{
			name:    "script stripped",
			src:     "Bonjour <script>alert(1)</script>",
			want:    []string{"Bonjour"},
			notWant: []string{"<script", "alert(1)"},
		},
		{
			name:    "event handler stripped",
			src:     `<img src="x.png" onerror="alert(1)">`,
			notWant: []string{"onerror"},
		},
		{
			name: "fenced code highlighted",
			src:  "```go\nfmt.Println(\"hi\")\n```",
			want: []string{"<pre", "Println"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := u.HTML(tt.src)
			if err != nil {
				t.Fatalf("HTML() error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(string(out), w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(string(out), nw) {
					t.Errorf("output contains %q:\n%s", nw, out)
				}
			}
		})
	}
}

func TestRender(t *testing.T) {
	r := chi.NewRouter()
	RegisterRoutes(r, New(logging.Discard()))

	t.Run("renders fragment", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ui/render", strings.NewReader(`{"markdown":"**gras**"}`)))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("Content-Type = %q", ct)
		}
		if !strings.Contains(w.Body.String(), "<strong>gras</strong>") {
			t.Errorf("body = %s", w.Body.String())
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ui/render", strings.NewReader(`nope`)))
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}
