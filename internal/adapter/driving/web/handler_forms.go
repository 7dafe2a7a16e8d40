package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ericfisherdev/authorsite/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/authorsite/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/authorsite/internal/application"
	"github.com/ericfisherdev/authorsite/internal/domain/model"
)

const (
	msgContactSent = "Thank you! Your message has been sent."
	msgBookingSent = "Thank you! Your booking request has been sent. We will be in touch soon."
)

// Contact renders the contact page with the form selected by ?type=.
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	kind := model.ContactKind(r.URL.Query().Get("type"))
	if !kind.Valid() {
		kind = model.ContactKindPrayer
	}
	h.renderContact(w, r, http.StatusOK, kind, vm.Form{}, vm.Form{})
}

// SubmitContact sends a prayer request, testimony or question.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		h.renderError(w, r, http.StatusForbidden, msgForbidden)
		return
	}
	_ = r.ParseForm()

	var form model.ContactForm
	decodeForm(r, &form)
	kind := form.Kind
	if !kind.Valid() {
		kind = model.ContactKindPrayer
	}

	if h.contact == nil {
		h.renderContact(w, r, http.StatusServiceUnavailable, kind,
			vm.Form{Values: formValues(r), Error: msgMailerUnset}, vm.Form{})
		return
	}

	status, result := h.formOutcome(h.contact.SendContact(r.Context(), form), r, msgContactSent)
	h.renderContact(w, r, status, kind, result, vm.Form{})
}

// SubmitBooking sends a speaking-engagement request.
func (h *Handler) SubmitBooking(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		h.renderError(w, r, http.StatusForbidden, msgForbidden)
		return
	}
	_ = r.ParseForm()

	var form model.BookingForm
	decodeForm(r, &form)

	if h.contact == nil {
		h.renderContact(w, r, http.StatusServiceUnavailable, model.ContactKindPrayer,
			vm.Form{}, vm.Form{Values: formValues(r), Error: msgMailerUnset})
		return
	}

	status, result := h.formOutcome(h.contact.SendBooking(r.Context(), form), r, msgBookingSent)
	h.renderContact(w, r, status, model.ContactKindPrayer, vm.Form{}, result)
}

// formOutcome maps a send error onto the form state. A successful send
// clears the form.
func (h *Handler) formOutcome(err error, r *http.Request, sent string) (int, vm.Form) {
	var verr *application.ValidationError
	switch {
	case err == nil:
		return http.StatusOK, vm.Form{Notice: sent}
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, vm.Form{Values: formValues(r), Errors: verr.Fields}
	default:
		return http.StatusBadGateway, vm.Form{Values: formValues(r), Error: application.MsgSendFailed}
	}
}

func (h *Handler) renderContact(w http.ResponseWriter, r *http.Request, status int, kind model.ContactKind, contact, booking vm.Form) {
	page := h.page(w, r, "Contact", "/contact")
	contact.CSRFToken = page.CSRFToken
	booking.CSRFToken = page.CSRFToken

	data := vm.Contact{
		Kind:    string(kind),
		Kinds:   h.site.contactKinds(),
		Contact: contact,
		Booking: booking,
	}
	h.render(w, r, status, page, pages.Contact(data))
}

// Login renders the author sign-in form.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.renderLogin(w, r, http.StatusOK, vm.Login{
		Next:    safeNext(q.Get("next")),
		Expired: q.Get("expired") == "1",
	})
}

// SubmitLogin exchanges credentials for a CMS token and starts a session.
func (h *Handler) SubmitLogin(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		h.renderError(w, r, http.StatusForbidden, msgForbidden)
		return
	}
	_ = r.ParseForm()
	next := safeNext(r.PostFormValue("next"))

	session, err := h.auth.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		data := vm.Login{Next: next}
		data.Values = formValues(r)
		status := http.StatusUnauthorized

		var verr *application.ValidationError
		if errors.As(err, &verr) {
			data.Errors = verr.Fields
			status = http.StatusUnprocessableEntity
		} else {
			data.Error = application.LoginFailureMessage(err)
		}
		h.renderLogin(w, r, status, data)
		return
	}

	h.setSessionCookie(w, session)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// Logout ends the author session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		h.renderError(w, r, http.StatusForbidden, msgForbidden)
		return
	}
	if c, err := r.Cookie(sessionCookieName); err == nil {
		if err := h.auth.Logout(r.Context(), c.Value); err != nil {
			h.logger.Error("failed to delete session", "error", err)
		}
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, data vm.Login) {
	page := h.page(w, r, "Login", "/login")
	data.CSRFToken = page.CSRFToken
	h.render(w, r, status, page, pages.Login(data))
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
