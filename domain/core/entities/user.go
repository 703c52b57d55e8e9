package entities

// Attribute names of a user record in the item store.
const (
	AttrUsername     = "username"
	AttrPasswordHash = "passwordHash"
	AttrCreatedAt    = "createdAt"
)

// User is a registered account. PasswordHash never leaves the auth flow.
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	CreatedAt    string `json:"createdAt"`
}

// Attributes flattens the user into item-store attributes
func (u *User) Attributes() map[string]string {
	return map[string]string{
		AttrUsername:     u.Username,
		AttrPasswordHash: u.PasswordHash,
		AttrCreatedAt:    u.CreatedAt,
	}
}

// UserFromAttributes rebuilds a user from stored attributes
func UserFromAttributes(attrs map[string]string) *User {
	return &User{
		Username:     attrs[AttrUsername],
		PasswordHash: attrs[AttrPasswordHash],
		CreatedAt:    attrs[AttrCreatedAt],
	}
}
