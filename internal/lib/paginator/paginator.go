// Package paginator splits counted result sets into numbered pages.
//
// Requested page numbers never produce an error: a missing or non-integer
// value resolves to the first page and an out-of-range value resolves to the
// last page. An empty result set still has one (empty) page.
package paginator

import (
	"errors"
	"strconv"
	"strings"
)

const DefaultPerPage = 4

type Page struct {
	Number   int
	NumPages int
	PerPage  int
	Total    int
}

func (p Page) Offset() uint64 {
	return uint64((p.Number - 1) * p.PerPage)
}

func (p Page) Limit() uint64 {
	return uint64(p.PerPage)
}

func (p Page) HasPrev() bool { return p.Number > 1 }
func (p Page) HasNext() bool { return p.Number < p.NumPages }
func (p Page) Prev() int     { return p.Number - 1 }
func (p Page) Next() int     { return p.Number + 1 }

// HasOtherPages reports whether pagination controls are worth rendering.
func (p Page) HasOtherPages() bool {
	return p.NumPages > 1
}

// Resolve picks the page for the raw query value given the total row count.
func Resolve(raw string, total, perPage int) Page {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if total < 0 {
		total = 0
	}

	numPages := (total + perPage - 1) / perPage
	if numPages < 1 {
		numPages = 1
	}

	page := Page{
		Number:   1,
		NumPages: numPages,
		PerPage:  perPage,
		Total:    total,
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return page
	}

	n, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) {
		page.Number = numPages
		return page
	}
	if err != nil {
		return page
	}

	if n < 1 || n > numPages {
		page.Number = numPages
		return page
	}

	page.Number = n
	return page
}
