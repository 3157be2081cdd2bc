package model

// Identity represents a PickUp user profile as stored in the users
// collection. The ID is the stable key assigned by the identity provider
// and never changes; only the owning user mutates the rest.
type Identity struct {
	ID              string  `json:"id"`
	Username        string  `json:"username"`
	Email           string  `json:"email"`
	ProfileImageURL *string `json:"profile_image_url,omitempty"`
}

// Username constraints
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
)

// PlaceholderUsername is substituted when a profile document has not been
// written yet (or is missing) so the account still renders.
const PlaceholderUsername = "User"
