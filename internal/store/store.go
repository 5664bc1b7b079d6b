// Package store provides the persistence layer. Every idea read and write
// takes an explicit owner id; a row that exists but belongs to another user
// is reported the same way as a missing row.
package store

import "errors"

// ErrNotFound is returned when a record does not exist or is not owned by
// the acting user. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("record not found")

// IdeaFilter narrows List results. Zero values mean "no constraint".
type IdeaFilter struct {
	Status string // exact match
	Search string // case-insensitive substring over title and description
}
