package ui

import (
	"bytes"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/varsilias/persona-proxy/pkg/types"
	"github.com/varsilias/persona-proxy/pkg/utils"
)

// UI turns assistant replies (markdown) into sanitized HTML fragments for the
// bundled browser client.
type UI struct {
	log    *slog.Logger
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func New(log *slog.Logger) *UI {
	md := goldmark.New(
		goldmark.WithRendererOptions(gmhtml.WithUnsafe(), gmhtml.WithHardWraps()),
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("dracula"),
				highlighting.WithFormatOptions(
					chromahtml.WithLineNumbers(false),
				),
			),
		),
	)

	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("code", "pre", "span")
	p.AllowAttrs("style").OnElements("span", "pre") // inline styles from the highlighter

	return &UI{log: log, md: md, policy: p}
}

// HTML renders src to sanitized HTML.
func (u *UI) HTML(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := u.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(u.policy.SanitizeBytes(buf.Bytes())), nil
}

type renderRequest struct {
	Markdown string `json:"markdown"`
}

// Render POST /ui/render { markdown } -> text/html fragment
func (u *UI) Render(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSON(w, http.StatusBadRequest, types.ErrorResponse{Error: "invalid json", Detail: err.Error()})
		return
	}

	out, err := u.HTML(req.Markdown)
	if err != nil {
		u.log.Error("markdown render", "err", err)
		utils.ServerError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(out))
}
