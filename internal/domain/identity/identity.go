// internal/domain/identity/identity.go
package identity

// Identity is the caller identity carried through cart and order operations.
// Exactly one facet is set: an authenticated user ID or an anonymous
// session token minted by the session cookie middleware.
type Identity struct {
	UserID       *uint
	SessionToken string
}

// FromUser builds an authenticated identity
func FromUser(userID uint) Identity {
	return Identity{UserID: &userID}
}

// FromSession builds an anonymous identity
func FromSession(token string) Identity {
	return Identity{SessionToken: token}
}

// IsAuthenticated reports whether the identity belongs to a registered user
func (i Identity) IsAuthenticated() bool {
	return i.UserID != nil
}

// IsValid reports whether exactly one facet is set
func (i Identity) IsValid() bool {
	if i.UserID != nil {
		return i.SessionToken == ""
	}
	return i.SessionToken != ""
}
