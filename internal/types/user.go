package types

// AuthenticatedUser is the per-request identity placed in the gin context by
// the auth middleware. Everything below the handlers receives it as an
// explicit parameter.
type AuthenticatedUser struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}
