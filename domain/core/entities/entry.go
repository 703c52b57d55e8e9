package entities

import (
	"strings"

	"ahkneemay/domain/core/valueobjects"
)

// Attribute names of an entry record in the item store.
const (
	AttrTitle     = "title"
	AttrOwner     = "owner"
	AttrImageKey  = "imageKey"
	AttrPublisher = "publisher"
	AttrAuthor    = "author"
	AttrYear      = "year"
	AttrSeasons   = "seasons"
)

// Entry is one anime on a user's list. Every string field except Owner and
// ImageKey is stored lower-cased. Optional fields are empty when absent.
type Entry struct {
	Title     string `json:"title"`
	Owner     string `json:"owner"`
	ImageKey  string `json:"imageKey"`
	Publisher string `json:"publisher,omitempty"`
	Author    string `json:"author,omitempty"`
	Year      string `json:"year,omitempty"`
	Seasons   string `json:"seasons,omitempty"`
}

// NewEntry builds a normalized entry for key.
func NewEntry(key valueobjects.EntryKey, imageKey, publisher, author, year, seasons string) *Entry {
	return &Entry{
		Title:     key.Title(),
		Owner:     key.Owner(),
		ImageKey:  imageKey,
		Publisher: normalize(publisher),
		Author:    normalize(author),
		Year:      strings.TrimSpace(year),
		Seasons:   strings.TrimSpace(seasons),
	}
}

// HasImage reports whether an image key is recorded
func (e *Entry) HasImage() bool {
	return e.ImageKey != ""
}

// Attributes flattens the entry into item-store attributes. Optional fields
// are only included when present.
func (e *Entry) Attributes() map[string]string {
	attrs := map[string]string{
		AttrTitle:    e.Title,
		AttrOwner:    e.Owner,
		AttrImageKey: e.ImageKey,
	}
	for name, value := range map[string]string{
		AttrPublisher: e.Publisher,
		AttrAuthor:    e.Author,
		AttrYear:      e.Year,
		AttrSeasons:   e.Seasons,
	} {
		if value != "" {
			attrs[name] = value
		}
	}
	return attrs
}

// EntryFromAttributes rebuilds an entry from stored attributes
func EntryFromAttributes(attrs map[string]string) *Entry {
	return &Entry{
		Title:     attrs[AttrTitle],
		Owner:     attrs[AttrOwner],
		ImageKey:  attrs[AttrImageKey],
		Publisher: attrs[AttrPublisher],
		Author:    attrs[AttrAuthor],
		Year:      attrs[AttrYear],
		Seasons:   attrs[AttrSeasons],
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
