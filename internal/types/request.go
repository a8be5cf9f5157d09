package types

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Request tags.
const (
	TagSearchPage = "search_page"
	TagListing    = "listing"
)

// Request represents an HTTP GET to be fetched by the crawler.
type Request struct {
	// URL is the target URL to fetch, without the extra query params.
	URL *url.URL

	// Params are merged into the URL query when the request is sent.
	Params url.Values

	// Headers are custom HTTP headers to send with the request.
	Headers http.Header

	// Tag categorizes this request (search_page or listing).
	Tag string

	// CreatedAt is when this request was created.
	CreatedAt time.Time
}

// NewRequest creates a new Request with empty params and headers.
func NewRequest(rawURL string) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidURL, rawURL, err)
	}

	return &Request{
		URL:       u,
		Params:    make(url.Values),
		Headers:   make(http.Header),
		CreatedAt: time.Now(),
	}, nil
}

// NewPageRequest creates a request for one page of a search listing.
// Page 1 carries no page parameter.
func NewPageRequest(baseURL string, page int) (*Request, error) {
	req, err := NewRequest(baseURL)
	if err != nil {
		return nil, err
	}
	req.Tag = TagSearchPage
	if page > 1 {
		req.Params.Set("page", strconv.Itoa(page))
	}
	return req, nil
}

// URLString returns the URL that is actually requested, params included.
func (r *Request) URLString() string {
	if r.URL == nil {
		return ""
	}
	if len(r.Params) == 0 {
		return r.URL.String()
	}
	u := *r.URL
	q := u.Query()
	for key, values := range r.Params {
		q.Del(key)
		for _, v := range values {
			q.Add(key, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Domain returns the hostname of the request URL.
func (r *Request) Domain() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.Hostname()
}
