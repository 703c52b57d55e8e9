package queries

import "ahkneemay/domain/core/entities"

// ListEntriesQuery lists the entries of one owner. An empty owner is an
// anonymous caller and always gets an empty list.
type ListEntriesQuery struct {
	Owner string
}

// Validate accepts every listing query
func (q ListEntriesQuery) Validate() error {
	return nil
}

// EntryView is an entry with a link to its cover image
type EntryView struct {
	entities.Entry
	ImageURL string `json:"imageURL"`
}

// ListEntriesResult represents the result of listing entries
type ListEntriesResult struct {
	Entries      []EntryView `json:"entries"`
	Count        int         `json:"count"`
	ImageBaseURL string      `json:"imageBaseURL"`
}
