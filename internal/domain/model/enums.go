package model

// FeedState is the lifecycle state of a comment feed.
type FeedState string

const (
	FeedStateIdle     FeedState = "idle"
	FeedStateFetching FeedState = "fetching"
	FeedStateLoaded   FeedState = "loaded"
	FeedStateError    FeedState = "error"
)

// ContactKind identifies which contact form was submitted.
type ContactKind string

const (
	ContactKindPrayer    ContactKind = "prayer"
	ContactKindTestimony ContactKind = "testimony"
	ContactKindQuestions ContactKind = "questions"
)

// Valid reports whether k is one of the known contact form kinds.
func (k ContactKind) Valid() bool {
	switch k {
	case ContactKindPrayer, ContactKindTestimony, ContactKindQuestions:
		return true
	}
	return false
}

// SharePermission records whether a testimony may be shared publicly.
type SharePermission string

const (
	ShareFull      SharePermission = "yes-full"
	ShareInitials  SharePermission = "yes-initials"
	ShareAnonymous SharePermission = "yes-anonymous"
	ShareNo        SharePermission = "no"
)
