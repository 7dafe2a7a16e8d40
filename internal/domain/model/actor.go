package model

// Actor identifies who is submitting a comment. It is a closed set:
// AdminActor or AnonymousActor.
type Actor interface {
	actor()
}

// AdminActor is a signed-in author whose comments carry a bearer token.
type AdminActor struct {
	Token       string
	DisplayName string
	Email       string
}

// AnonymousActor is a visitor who supplies a name and email with each comment.
type AnonymousActor struct {
	Name  string
	Email string
}

func (AdminActor) actor() {}
func (AnonymousActor) actor() {}
