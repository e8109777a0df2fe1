// Package auth holds the admin authorization collaborator. The credential is
// supplied from configuration, never embedded in source.
package auth

import "crypto/subtle"

// AdminAuthorizer checks a shared admin token in constant time.
type AdminAuthorizer struct {
	token string
}

func NewAdminAuthorizer(token string) *AdminAuthorizer {
	return &AdminAuthorizer{token: token}
}

// Authorize reports whether the presented credential matches. An empty
// configured token disables admin access entirely rather than allowing
// unauthenticated requests through.
func (a *AdminAuthorizer) Authorize(presented string) bool {
	if a.token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a.token), []byte(presented)) == 1
}
