// Package listview derives deterministic, paginated projections over
// immutable collection snapshots. It never mutates its input and holds no
// state of its own.
package listview

import (
	"sort"
	"strings"
)

// DefaultPageSize is used when Params.PageSize is not positive.
const DefaultPageSize = 10

// Params configure one projection.
type Params struct {
	// Search is matched case-insensitively as a substring against the
	// source's text fields. Empty matches everything.
	Search string
	// Page is 1-based and clamped to the filtered collection's range.
	Page int
	// PageSize defaults to DefaultPageSize.
	PageSize int
	// Descending orders the identifier comparison; the priority rank always
	// sorts ascending.
	Descending bool
}

// Source describes how a record type is searched and ordered.
type Source[T any] struct {
	// Fields returns the text fields the search term is matched against.
	Fields func(T) []string
	// Priority is the primary sort key, lower ranks first. Nil means all
	// records rank equally and order falls through to ID.
	Priority func(T) int
	// ID is the secondary sort key and tiebreak.
	ID func(T) int64
}

// Page is one projected page of a collection.
type Page[T any] struct {
	Items       []T `json:"items"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
}

// Project filters, sorts and paginates a snapshot. Equal keys keep their
// input order, so projecting an already-projected collection with the same
// parameters is idempotent.
func Project[T any](src []T, s Source[T], p Params) Page[T] {
	pageSize := p.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	filtered := filter(src, s, p.Search)

	sort.SliceStable(filtered, func(i, j int) bool {
		if s.Priority != nil {
			pi, pj := s.Priority(filtered[i]), s.Priority(filtered[j])
			if pi != pj {
				return pi < pj
			}
		}
		ii, ij := s.ID(filtered[i]), s.ID(filtered[j])
		if p.Descending {
			return ii > ij
		}
		return ii < ij
	})

	totalPages := (len(filtered) + pageSize - 1) / pageSize

	// Clamp rather than serve an out-of-range empty slice: when the filtered
	// collection shrinks below the requested page, fall back to the last
	// valid page, or page 1 when nothing is left.
	page := p.Page
	if page < 1 {
		page = 1
	}
	if totalPages == 0 {
		return Page[T]{Items: []T{}, TotalPages: 0, CurrentPage: 1}
	}
	if page > totalPages {
		page = totalPages
	}

	first := (page - 1) * pageSize
	last := first + pageSize
	if last > len(filtered) {
		last = len(filtered)
	}

	return Page[T]{Items: filtered[first:last], TotalPages: totalPages, CurrentPage: page}
}

func filter[T any](src []T, s Source[T], term string) []T {
	out := make([]T, 0, len(src))
	if term == "" || s.Fields == nil {
		return append(out, src...)
	}
	needle := strings.ToLower(term)
	for _, record := range src {
		for _, field := range s.Fields(record) {
			if strings.Contains(strings.ToLower(field), needle) {
				out = append(out, record)
				break
			}
		}
	}
	return out
}
