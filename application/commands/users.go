package commands

import (
	"fmt"
	"unicode/utf8"

	"ahkneemay/domain/config"
	pkgerrors "ahkneemay/pkg/errors"
)

// User-facing messages for account commands
const (
	MsgUsernameTooShort   = "The username must be at least %d characters in length."
	MsgUsernameTooLong    = "The username cannot contain more than %d characters."
	MsgUsernameCharset    = "The username may only contain letters, digits, '_' and '-'."
	MsgPasswordTooShort   = "The password must be at least %d characters in length."
	MsgPasswordMismatch   = "The two passwords didn't match!"
	MsgUsernameTaken      = "This username is already taken."
	MsgRegistrationDone   = "The registration was successful!"
	MsgRegistrationDenied = "The registration was rejected."
)

// SignUpCommand registers a new account. Honeypot carries the hidden form
// fields that only bots fill in.
type SignUpCommand struct {
	Username        string
	Password        string
	PasswordConfirm string
	Honeypot        string
}

// Validate checks the command against the default business rules
func (c SignUpCommand) Validate() error {
	return c.ValidateWith(config.DefaultDomainConfig())
}

// ValidateWith applies the account rules in order
func (c SignUpCommand) ValidateWith(rules *config.DomainConfig) error {
	if c.Honeypot != "" {
		return pkgerrors.NewForbiddenError(MsgRegistrationDenied).WithCode("HONEYPOT")
	}

	length := utf8.RuneCountInString(c.Username)
	if length < rules.MinUsernameLength {
		return pkgerrors.NewValidationError(fmt.Sprintf(MsgUsernameTooShort, rules.MinUsernameLength))
	}
	if length > rules.MaxUsernameLength {
		return pkgerrors.NewValidationError(fmt.Sprintf(MsgUsernameTooLong, rules.MaxUsernameLength))
	}
	if !rules.IsValidUsername(c.Username) {
		return pkgerrors.NewValidationError(MsgUsernameCharset)
	}

	if utf8.RuneCountInString(c.Password) < rules.MinPasswordLength {
		return pkgerrors.NewValidationError(fmt.Sprintf(MsgPasswordTooShort, rules.MinPasswordLength))
	}

	if c.Password != c.PasswordConfirm {
		return pkgerrors.NewValidationError(MsgPasswordMismatch)
	}

	return nil
}
