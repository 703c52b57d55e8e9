package config

import "regexp"

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Account constraints
	MinUsernameLength int
	MaxUsernameLength int
	MinPasswordLength int
	UsernamePattern   *regexp.Regexp

	// Entry constraints
	AllowedImageTypes map[string]string // content type -> file extension
	NumericPattern    *regexp.Regexp
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MinUsernameLength: 6,
		MaxUsernameLength: 20,
		MinPasswordLength: 8,
		UsernamePattern:   regexp.MustCompile(`^[A-Za-z0-9_-]+$`),

		AllowedImageTypes: map[string]string{
			"image/jpeg": ".jpg",
			"image/png":  ".png",
		},
		NumericPattern: regexp.MustCompile(`^[0-9]+$`),
	}
}

// IsAllowedImageType reports whether contentType is an accepted cover format
func (c *DomainConfig) IsAllowedImageType(contentType string) bool {
	_, ok := c.AllowedImageTypes[contentType]
	return ok
}

// ImageExtension returns the file extension used for a content type
func (c *DomainConfig) ImageExtension(contentType string) string {
	return c.AllowedImageTypes[contentType]
}

// IsNumeric reports whether s consists only of digits
func (c *DomainConfig) IsNumeric(s string) bool {
	return c.NumericPattern.MatchString(s)
}

// IsValidUsername reports whether s only uses characters allowed in usernames.
// Usernames become a blob key segment, so '/' is never allowed.
func (c *DomainConfig) IsValidUsername(s string) bool {
	return c.UsernamePattern.MatchString(s)
}
