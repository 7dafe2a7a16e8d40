package model

// ContactForm is a prayer request, testimony or general question. The form
// tag names the HTML input; label is used in validation messages.
type ContactForm struct {
	Kind              ContactKind     `form:"formType" label:"Form type" validate:"required"`
	FirstName         string          `form:"firstName" label:"First name" validate:"required"`
	LastName          string          `form:"lastName" label:"Last name" validate:"required"`
	Email             string          `form:"email" label:"Email" validate:"required,email"`
	Subject           string          `form:"subject" label:"Subject" validate:"required"`
	Message           string          `form:"message" label:"Message" validate:"required,min=10"`
	SharePermission   SharePermission `form:"sharePermission" label:"Share permission" validate:"omitempty,oneof=yes-full yes-initials yes-anonymous no"`
	Phone             string          `form:"phone"`
	DateRequested     string          `form:"dateRequested"`
	TimePreference    string          `form:"timePreference"`
	EventType         string          `form:"eventType"`
	NumberOfAttendees string          `form:"numberOfAttendees"`
	VenueDetails      string          `form:"venueDetails"`
	AdditionalNotes   string          `form:"additionalNotes"`
}

// BookingForm is a speaking-engagement request.
type BookingForm struct {
	FirstName             string `form:"firstName" label:"First name" validate:"required"`
	LastName              string `form:"lastName" label:"Last name" validate:"required"`
	EmailAddress          string `form:"emailAddress" label:"Email" validate:"required,email"`
	Country               string `form:"country" label:"Country" validate:"required"`
	PhoneNumber           string `form:"phoneNumber" label:"Phone number" validate:"required"`
	ChurchName            string `form:"churchName" label:"Church/Organization name" validate:"required"`
	ChurchWebsite         string `form:"churchWebsite"`
	TypeOfEvent           string `form:"typeOfEvent"`
	DateOfEvent           string `form:"dateOfEvent" label:"Date of event" validate:"required"`
	EventLocation         string `form:"eventLocation" label:"Event location" validate:"required"`
	EventCountry          string `form:"eventCountry"`
	EventDescription      string `form:"eventDescription" label:"Event description" validate:"required"`
	AddressLine1          string `form:"addressLine1"`
	AddressLine2          string `form:"addressLine2"`
	City                  string `form:"city"`
	State                 string `form:"state"`
	ZipCode               string `form:"zipCode"`
	ClosestAirport        string `form:"closestAirport"`
	AdditionalInformation string `form:"additionalInformation"`
	HearAboutUs           string `form:"hearAboutUs"`
}
