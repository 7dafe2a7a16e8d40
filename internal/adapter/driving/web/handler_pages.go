package web

import (
	"errors"
	"net/http"

	"github.com/ericfisherdev/authorsite/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/authorsite/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/authorsite/internal/application"
)

const (
	blogsPerPage = 9
	booksPerPage = 12
)

// Home renders the landing page. A CMS failure still renders the page with
// an inline message.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	data := vm.Home{Tagline: h.site.Tagline}

	home, err := h.content.Home(r.Context())
	if err != nil {
		h.logger.Error("failed to load home page", "error", err)
		data.Error = msgPageFailed
	} else {
		data.Blogs = toPostCards(home.Blogs)
		data.Episodes = toEpisodes(home.Episodes)
	}

	h.render(w, r, http.StatusOK, h.page(w, r, "", "/"), pages.Home(data))
}

// About renders the about page.
func (h *Handler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, h.page(w, r, "About", "/about"), pages.About(h.aboutHTML))
}

// BlogList renders one page of blog posts.
func (h *Handler) BlogList(w http.ResponseWriter, r *http.Request) {
	page := queryPage(r)
	result, err := h.content.Blogs(r.Context(), page, blogsPerPage)
	if err != nil {
		h.logger.Error("failed to list blogs", "page", page, "error", err)
		h.renderError(w, r, http.StatusBadGateway, msgPageFailed)
		return
	}

	data := vm.BlogList{
		Posts: toPostCards(result.Posts),
		Pager: vm.Pager{Page: page, TotalPages: result.TotalPages, BasePath: "/blog"},
	}
	h.render(w, r, http.StatusOK, h.page(w, r, "Blog", "/blog"), pages.BlogList(data))
}

// BookList renders one page of books.
func (h *Handler) BookList(w http.ResponseWriter, r *http.Request) {
	page := queryPage(r)
	result, err := h.content.Books(r.Context(), page, booksPerPage)
	if err != nil {
		h.logger.Error("failed to list books", "page", page, "error", err)
		h.renderError(w, r, http.StatusBadGateway, msgPageFailed)
		return
	}

	data := vm.BookList{
		Total: result.Total,
		Pager: vm.Pager{Page: page, TotalPages: result.TotalPages, BasePath: "/books"},
	}
	for _, b := range result.Books {
		data.Books = append(data.Books, toBookCard(b))
	}
	h.render(w, r, http.StatusOK, h.page(w, r, "Books", "/books"), pages.BookList(data))
}

// BookDetail renders a single book.
func (h *Handler) BookDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.renderError(w, r, http.StatusNotFound, msgNotFound)
		return
	}

	book, err := h.content.Book(r.Context(), id)
	if errors.Is(err, application.ErrPostNotFound) {
		h.renderError(w, r, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to load book", "id", id, "error", err)
		h.renderError(w, r, http.StatusBadGateway, msgPageFailed)
		return
	}

	detail := toBookDetail(*book)
	h.render(w, r, http.StatusOK, h.page(w, r, detail.Title, "/books"), pages.BookDetail(detail))
}

// MediaIndex lists the shows.
func (h *Handler) MediaIndex(w http.ResponseWriter, r *http.Request) {
	shows, err := h.media.Shows(r.Context())
	if err != nil {
		h.logger.Error("failed to list shows", "error", err)
		h.renderError(w, r, http.StatusBadGateway, msgPageFailed)
		return
	}

	links := make([]vm.ShowLink, 0, len(shows))
	for _, s := range shows {
		links = append(links, vm.ShowLink{Title: s.Title, Path: s.URL})
	}
	h.render(w, r, http.StatusOK, h.page(w, r, "Media", "/media"), pages.MediaIndex(links))
}

// Show renders a show and its episodes.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	show, err := h.media.ShowBySlug(r.Context(), slug)
	if errors.Is(err, application.ErrShowNotFound) {
		h.renderError(w, r, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to load show", "slug", slug, "error", err)
		h.renderError(w, r, http.StatusBadGateway, msgPageFailed)
		return
	}

	episodes, err := h.media.Episodes(r.Context(), show.TagID)
	if err != nil {
		h.logger.Error("failed to load episodes", "slug", slug, "tag_id", show.TagID, "error", err)
		h.renderError(w, r, http.StatusBadGateway, msgPageFailed)
		return
	}

	data := toShow(*show, episodes, h.site.Media.Banners)
	h.render(w, r, http.StatusOK, h.page(w, r, show.Title, "/media"), pages.Show(data))
}
