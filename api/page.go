package api

import (
	"net/url"
	"strconv"
)

// Page is the paginated envelope of list endpoints.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// HasNext reports whether another page follows.
func (p *Page[T]) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}

// Pagination selects a window of a list endpoint. Zero values are omitted.
type Pagination struct {
	Limit  int
	Offset int
}

// Query renders the pagination as query parameters.
func (p Pagination) Query() url.Values {
	q := url.Values{}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		q.Set("offset", strconv.Itoa(p.Offset))
	}
	return q
}

// NextPage returns the pagination of the page after this one.
func (p Pagination) NextPage() Pagination {
	return Pagination{Limit: p.Limit, Offset: p.Offset + p.Limit}
}
