package ui

import "github.com/go-chi/chi/v5"

func RegisterRoutes(mux chi.Router, u *UI) {
	mux.Post("/ui/render", u.Render)
}
