package resources

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListOptions are the paging and search parameters shared by every list endpoint
type ListOptions struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string // asc or desc
}

// Normalize clamps paging to sane values and drops an unknown sort order
func (o ListOptions) Normalize() ListOptions {
	if o.Page < 1 {
		o.Page = DefaultPage
	}
	if o.Limit < 1 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	o.Search = strings.TrimSpace(o.Search)
	o.SortOrder = strings.ToLower(o.SortOrder)
	if o.SortOrder != "asc" && o.SortOrder != "desc" {
		o.SortOrder = ""
	}
	return o
}

// Query encodes the options the way the backend expects them
func (o ListOptions) Query() url.Values {
	o = o.Normalize()
	q := url.Values{}
	q.Set("page", strconv.Itoa(o.Page))
	q.Set("limit", strconv.Itoa(o.Limit))
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	if o.SortBy != "" {
		q.Set("sort_by", o.SortBy)
	}
	if o.SortOrder != "" {
		q.Set("sort_order", o.SortOrder)
	}
	return q
}

// ListOptionsFromQuery reads list options from an incoming request query
func ListOptionsFromQuery(q url.Values) ListOptions {
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return ListOptions{
		Page:      page,
		Limit:     limit,
		Search:    q.Get("search"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}.Normalize()
}
