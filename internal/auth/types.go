package auth

// Credentials is a username/password pair taken from a Basic header.
type Credentials struct {
	Username string
	Password string
}

// Identity is an email address asserted by an external identity provider.
type Identity struct {
	Provider string
	Email    string
}
