package commands

import (
	"strings"

	"ahkneemay/domain/config"
	"ahkneemay/domain/core/valueobjects"
	pkgerrors "ahkneemay/pkg/errors"
)

// User-facing validation messages for entry commands
const (
	MsgTitleAndImageRequired = "The title and the image are required."
	MsgYearNotNumeric        = "The year must be a number."
	MsgSeasonsNotNumeric     = "The number of seasons must be a number."
	MsgImageTypeNotAllowed   = "Only JPEG and PNG images are allowed."
	MsgLoginRequired         = "You need to be logged in to manage your list."
	MsgTitleRequired         = "The title is required."
)

// AddOrUpdateEntryCommand adds an anime to the owner's list or replaces the
// entry with the same title
type AddOrUpdateEntryCommand struct {
	Owner     string
	Title     string
	Publisher string
	Author    string
	Year      string
	Seasons   string
	Image     *valueobjects.Image
}

// Validate checks the command against the default business rules
func (c AddOrUpdateEntryCommand) Validate() error {
	return c.ValidateWith(config.DefaultDomainConfig())
}

// ValidateWith fails on the first violated rule. The order of the checks is
// fixed so that a given input always produces the same message.
func (c AddOrUpdateEntryCommand) ValidateWith(rules *config.DomainConfig) error {
	if strings.TrimSpace(c.Title) == "" || c.Image == nil {
		return pkgerrors.NewValidationError(MsgTitleAndImageRequired)
	}

	if year := strings.TrimSpace(c.Year); year != "" && !rules.IsNumeric(year) {
		return pkgerrors.NewValidationError(MsgYearNotNumeric)
	}

	if seasons := strings.TrimSpace(c.Seasons); seasons != "" && !rules.IsNumeric(seasons) {
		return pkgerrors.NewValidationError(MsgSeasonsNotNumeric)
	}

	if !rules.IsAllowedImageType(c.Image.ContentType) {
		return pkgerrors.NewValidationError(MsgImageTypeNotAllowed)
	}

	if c.Owner == "" {
		return pkgerrors.NewUnauthorizedError(MsgLoginRequired)
	}

	return nil
}

// RemoveEntryCommand removes an anime from the owner's list
type RemoveEntryCommand struct {
	Owner string
	Title string
}

// Validate checks that the command names an entry
func (c RemoveEntryCommand) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return pkgerrors.NewValidationError(MsgTitleRequired)
	}
	if c.Owner == "" {
		return pkgerrors.NewUnauthorizedError(MsgLoginRequired)
	}
	return nil
}
