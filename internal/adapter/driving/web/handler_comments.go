package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ericfisherdev/authorsite/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/authorsite/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/authorsite/internal/application"
	"github.com/ericfisherdev/authorsite/internal/domain/model"
	"github.com/ericfisherdev/authorsite/internal/htmlcontent"
)

// BlogPost renders a post with page 1 of its comments. With ?keep=1 an
// already loaded feed is shown as is, so see more survives a full reload.
func (h *Handler) BlogPost(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadPost(w, r)
	if !ok {
		return
	}

	visitor := h.visitorID(w, r)
	feed := h.feeds.Get(visitor, post.ID)

	keep := r.URL.Query().Get("keep") == "1" && feed.Snapshot().State == model.FeedStateLoaded
	if !keep {
		if err := feed.Load(r.Context()); err != nil {
			h.logger.Warn("failed to load comments", "post_id", post.ID, "error", err)
		}
	}

	h.renderPost(w, r, http.StatusOK, post, feed, vm.Form{})
}

// SubmitComment posts a comment or reply and re-renders the post with the
// outcome next to the form.
func (h *Handler) SubmitComment(w http.ResponseWriter, r *http.Request) {
	// Parse before the CSRF check reads FormValue, which discards the error.
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, msgBadRequest)
		return
	}
	if !validateCSRF(r) {
		h.renderError(w, r, http.StatusForbidden, msgForbidden)
		return
	}

	post, ok := h.loadPost(w, r)
	if !ok {
		return
	}

	var parentID int64
	if raw := r.PostFormValue("parentId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			h.renderError(w, r, http.StatusBadRequest, msgBadRequest)
			return
		}
		parentID = id
	}

	session := h.currentSession(r)
	name := r.PostFormValue("fullName")
	email := r.PostFormValue("email")
	actor := application.ActorFor(session, name, email)

	feed := h.feeds.Get(h.visitorID(w, r), post.ID)
	result, err := h.comments.Submit(r.Context(), feed, actor, post.Date, model.CommentInput{
		PostID:   post.ID,
		ParentID: parentID,
		FullName: name,
		Email:    email,
		Content:  r.PostFormValue("content"),
	})

	form := vm.Form{Values: formValues(r)}
	status := http.StatusOK

	var verr *application.ValidationError
	switch {
	case err == nil:
		form = vm.Form{Notice: result.Notice}
	case errors.As(err, &verr):
		form.Errors = verr.Fields
		status = http.StatusUnprocessableEntity
	case errors.Is(err, application.ErrReauthenticate):
		if session != nil {
			if err := h.auth.Logout(r.Context(), session.ID); err != nil {
				h.logger.Warn("failed to drop rejected session", "error", err)
			}
		}
		h.clearSessionCookie(w)
		next := fmt.Sprintf("/blog/%d", post.ID)
		http.Redirect(w, r, "/login?expired=1&next="+url.QueryEscape(next), http.StatusSeeOther)
		return
	case errors.Is(err, application.ErrCommentsClosed):
		form.Error = application.MsgCommentsClosed
		status = http.StatusForbidden
	default:
		form.Errors = map[string]string{"content": application.MsgSubmitFailed}
		status = http.StatusBadGateway
	}

	h.renderPost(w, r, status, post, feed, form)
}

// MoreComments fetches the next page of comments into the visitor's feed.
func (h *Handler) MoreComments(w http.ResponseWriter, r *http.Request) {
	h.paginate(w, r, (*application.CommentFeed).SeeMore)
}

// LessComments collapses the visitor's feed back to the first page.
func (h *Handler) LessComments(w http.ResponseWriter, r *http.Request) {
	h.paginate(w, r, (*application.CommentFeed).ShowLess)
}

func (h *Handler) paginate(w http.ResponseWriter, r *http.Request, step func(*application.CommentFeed, context.Context) error) {
	if !validateCSRF(r) {
		h.renderError(w, r, http.StatusForbidden, msgForbidden)
		return
	}
	postID, ok := pathID(r)
	if !ok {
		h.renderError(w, r, http.StatusNotFound, msgNotFound)
		return
	}

	feed := h.feeds.Get(h.visitorID(w, r), postID)
	err := step(feed, r.Context())
	if errors.Is(err, application.ErrFeedNotLoaded) {
		err = feed.Load(r.Context())
	}
	switch {
	case errors.Is(err, application.ErrFetchInFlight):
		h.logger.Debug("pagination request dropped", "post_id", postID)
	case err != nil:
		h.logger.Warn("comment pagination failed", "post_id", postID, "error", err)
	}

	if isFragmentRequest(r) {
		csrf := ensureCSRF(w, r, h.secureCookies)
		h.write(w, r, http.StatusOK, pages.CommentFeed(toCommentFeed(feed.Snapshot(), csrf)))
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/blog/%d?keep=1#comments", postID), http.StatusSeeOther)
}

// loadPost resolves the {id} path value to a post, rendering the error page
// itself when that fails.
func (h *Handler) loadPost(w http.ResponseWriter, r *http.Request) (*model.Post, bool) {
	id, ok := pathID(r)
	if !ok {
		h.renderError(w, r, http.StatusNotFound, msgNotFound)
		return nil, false
	}

	post, err := h.content.Post(r.Context(), id)
	if errors.Is(err, application.ErrPostNotFound) {
		h.renderError(w, r, http.StatusNotFound, msgNotFound)
		return nil, false
	}
	if err != nil {
		h.logger.Error("failed to load post", "id", id, "error", err)
		h.renderError(w, r, http.StatusBadGateway, msgPageFailed)
		return nil, false
	}
	return post, true
}

func (h *Handler) renderPost(w http.ResponseWriter, r *http.Request, status int, post *model.Post, feed *application.CommentFeed, form vm.Form) {
	page := h.page(w, r, htmlcontent.DecodeEntities(post.Title), "/blog")
	form.CSRFToken = page.CSRFToken

	cf := vm.CommentForm{
		Form:   form,
		Action: fmt.Sprintf("/blog/%d/comments", post.ID),
		Open:   application.CommentsOpen(post.Date, h.now()),
		Closed: application.MsgCommentsClosed,
	}
	if page.User != nil {
		cf.AdminName = page.User.DisplayName
	}

	data := vm.PostDetail{
		ID:          post.ID,
		Title:       page.Title,
		Date:        formatDate(post.Date),
		ContentHTML: SanitizeHTML(post.Content),
		Feed:        toCommentFeed(feed.Snapshot(), page.CSRFToken),
		Form:        cf,
	}
	h.render(w, r, status, page, pages.BlogDetail(data))
}
