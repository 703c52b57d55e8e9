package queries

import (
	"strings"

	pkgerrors "ahkneemay/pkg/errors"
)

// MsgLoginInvalid is returned for any failed login
const MsgLoginInvalid = "The login data was invalid. Please try again!"

// AuthenticateQuery checks a username and password
type AuthenticateQuery struct {
	Username string
	Password string
}

// Validate rejects empty credentials with the login failure message
func (q AuthenticateQuery) Validate() error {
	if strings.TrimSpace(q.Username) == "" || q.Password == "" {
		return pkgerrors.NewUnauthorizedError(MsgLoginInvalid)
	}
	return nil
}

// GetUserQuery loads an account by username
type GetUserQuery struct {
	Username string
}

// Validate validates the GetUserQuery
func (q GetUserQuery) Validate() error {
	if q.Username == "" {
		return pkgerrors.NewValidationError("username is required")
	}
	return nil
}
