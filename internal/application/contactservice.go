package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/ericfisherdev/authorsite/internal/domain/model"
	"github.com/ericfisherdev/authorsite/internal/domain/port/driven"
)

// MsgSendFailed is shown when the email service rejects a form.
const MsgSendFailed = "Failed to send email. Please try again."

// ErrSendFailed wraps a mailer failure. Forms are sent once; the visitor
// decides whether to try again.
var ErrSendFailed = errors.New("sending form email failed")

// ContactService validates the contact and booking forms and hands them to
// the mailer.
type ContactService struct {
	mailer          driven.Mailer
	contactTemplate string
	bookingTemplate string
	logger          *slog.Logger
}

// NewContactService creates a ContactService that sends contact forms with
// contactTemplate and booking requests with bookingTemplate.
func NewContactService(mailer driven.Mailer, contactTemplate, bookingTemplate string, logger *slog.Logger) *ContactService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContactService{
		mailer:          mailer,
		contactTemplate: contactTemplate,
		bookingTemplate: bookingTemplate,
		logger:          logger,
	}
}

// ValidateContact checks a contact form. Every kind needs a name, email,
// subject and a message of at least 10 characters; a testimony also needs a
// share permission.
func ValidateContact(form model.ContactForm) *ValidationError {
	verr := forms.check(trimContact(form))
	if !form.Kind.Valid() {
		if verr == nil {
			verr = &ValidationError{}
		}
		verr.add("formType", "Please choose a valid form type")
	}
	if form.Kind == model.ContactKindTestimony && strings.TrimSpace(string(form.SharePermission)) == "" {
		if verr == nil {
			verr = &ValidationError{}
		}
		verr.add("sharePermission", "Share permission is required")
	}
	return verr
}

// ValidateBooking checks a booking request.
func ValidateBooking(form model.BookingForm) *ValidationError {
	return forms.check(trimBooking(form))
}

// SendContact validates form and sends it with its kind as form_type.
func (s *ContactService) SendContact(ctx context.Context, form model.ContactForm) error {
	form = trimContact(form)
	if verr := ValidateContact(form); verr != nil {
		return verr
	}

	params := templateParams(form)
	delete(params, "formType")
	params["form_type"] = string(form.Kind)
	if form.Kind != model.ContactKindTestimony {
		delete(params, "sharePermission")
	}

	if err := s.mailer.Send(ctx, s.contactTemplate, params); err != nil {
		s.logger.Error("failed to send contact form", "form_type", form.Kind, "error", err)
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	s.logger.Info("contact form sent", "form_type", form.Kind)
	return nil
}

// SendBooking validates form and sends it with the booking template.
func (s *ContactService) SendBooking(ctx context.Context, form model.BookingForm) error {
	form = trimBooking(form)
	if verr := ValidateBooking(form); verr != nil {
		return verr
	}

	if err := s.mailer.Send(ctx, s.bookingTemplate, templateParams(form)); err != nil {
		s.logger.Error("failed to send booking request", "error", err)
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	s.logger.Info("booking request sent", "event_date", form.DateOfEvent)
	return nil
}

// templateParams flattens a form struct into template parameters keyed by
// each field's form tag.
func templateParams(form any) map[string]string {
	v := reflect.ValueOf(form)
	t := v.Type()

	params := make(map[string]string, t.NumField())
	for i := range t.NumField() {
		name := t.Field(i).Tag.Get("form")
		if name == "" || name == "-" {
			continue
		}
		params[name] = v.Field(i).String()
	}
	return params
}

func trimContact(f model.ContactForm) model.ContactForm {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)
	f.Subject = strings.TrimSpace(f.Subject)
	f.Message = strings.TrimSpace(f.Message)
	return f
}

func trimBooking(f model.BookingForm) model.BookingForm {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.EmailAddress = strings.TrimSpace(f.EmailAddress)
	f.Country = strings.TrimSpace(f.Country)
	f.PhoneNumber = strings.TrimSpace(f.PhoneNumber)
	f.ChurchName = strings.TrimSpace(f.ChurchName)
	f.DateOfEvent = strings.TrimSpace(f.DateOfEvent)
	f.EventLocation = strings.TrimSpace(f.EventLocation)
	f.EventDescription = strings.TrimSpace(f.EventDescription)
	return f
}
