package valueobjects

import "strings"

// EntryKey identifies an anime entry within the item store. Titles are
// stored lower-cased, so two keys that differ only in title case are equal.
type EntryKey struct {
	title string
	owner string
}

// NewEntryKey creates a key for title scoped to owner
func NewEntryKey(title, owner string) EntryKey {
	return EntryKey{
		title: strings.ToLower(strings.TrimSpace(title)),
		owner: owner,
	}
}

// Title returns the normalized title
func (k EntryKey) Title() string {
	return k.title
}

// Owner returns the owning username
func (k EntryKey) Owner() string {
	return k.owner
}

// String returns "owner/title"
func (k EntryKey) String() string {
	return k.owner + "/" + k.title
}
