// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package prismic

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by GetByUID when no document matches.
var ErrNotFound = errors.New("prismic: document not found")

// APIError is returned when the repository answers with a non-2xx status.
type APIError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("prismic API error (status %d) for %s: %s", e.StatusCode, e.URL, e.Body)
}

// Document is a single repository document. Data is kept raw so callers
// can decode it into their own narrow shapes.
type Document struct {
	ID                   string          `json:"id"`
	UID                  string          `json:"uid"`
	Type                 string          `json:"type"`
	Href                 string          `json:"href"`
	Lang                 string          `json:"lang"`
	FirstPublicationDate string          `json:"first_publication_date"`
	LastPublicationDate  string          `json:"last_publication_date"`
	Data                 json.RawMessage `json:"data"`
}

// Response is one page of a document search.
type Response struct {
	Page             int        `json:"page"`
	ResultsPerPage   int        `json:"results_per_page"`
	ResultsSize      int        `json:"results_size"`
	TotalResultsSize int        `json:"total_results_size"`
	TotalPages       int        `json:"total_pages"`
	NextPage         *string    `json:"next_page"`
	PrevPage         *string    `json:"prev_page"`
	Results          []Document `json:"results"`
}

// Next returns the cursor URL of the following page, or "" when exhausted.
func (r *Response) Next() string {
	if r.NextPage == nil {
		return ""
	}
	return *r.NextPage
}

// stripToken keeps the access token out of cursors that leave the client.
func (r *Response) stripToken() {
	r.NextPage = withoutToken(r.NextPage)
	r.PrevPage = withoutToken(r.PrevPage)
}

// apiRoot is the subset of the repository root document the client needs.
type apiRoot struct {
	Refs []struct {
		ID          string `json:"id"`
		Ref         string `json:"ref"`
		Label       string `json:"label"`
		IsMasterRef bool   `json:"isMasterRef"`
	} `json:"refs"`
}
