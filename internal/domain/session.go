package domain

import "errors"

var (
	ErrNoSession    = errors.New("no active session")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("resource not found")
)

// User is the authenticated organization account.
type User struct {
	ID           string `json:"id"`
	HospitalName string `json:"hospitalName"`
	Email        string `json:"email"`
	Address      string `json:"address,omitempty"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
}

// Session pairs a bearer token with the user it belongs to.
// Token and User are either both set or both empty; a half-filled
// session is never observable.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Authenticated reports whether the session holds credentials.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}
