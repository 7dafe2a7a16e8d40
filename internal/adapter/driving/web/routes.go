package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// Static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Static assets (embedded via go:embed).
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	// Page routes.
	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /about", h.About)
	mux.HandleFunc("GET /blog", h.BlogList)
	mux.HandleFunc("GET /blog/{id}", h.BlogPost)
	mux.HandleFunc("POST /blog/{id}/comments", h.SubmitComment)
	mux.HandleFunc("POST /blog/{id}/comments/more", h.MoreComments)
	mux.HandleFunc("POST /blog/{id}/comments/less", h.LessComments)
	mux.HandleFunc("GET /books", h.BookList)
	mux.HandleFunc("GET /books/{id}", h.BookDetail)
	mux.HandleFunc("GET /media", h.MediaIndex)
	mux.HandleFunc("GET /media/{slug}", h.Show)
	mux.HandleFunc("GET /contact", h.Contact)
	mux.HandleFunc("POST /contact", h.SubmitContact)
	mux.HandleFunc("POST /contact/booking", h.SubmitBooking)
	mux.HandleFunc("GET /login", h.Login)
	mux.HandleFunc("POST /login", h.SubmitLogin)
	mux.HandleFunc("POST /logout", h.Logout)
}
