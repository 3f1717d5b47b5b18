// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the view records pages are rendered from and the
// parsing that turns raw repository documents into them.
package models

import (
	"time"

	"spacetraveling/internal/richtext"
)

// StaticReadingTime is the reading-time figure shown when it is not computed.
const StaticReadingTime = 4

// PostSummary is one entry of the post listing.
type PostSummary struct {
	UID                  string    `json:"uid"`
	FirstPublicationDate time.Time `json:"first_publication_date"`
	FormattedDate        string    `json:"formatted_date"`
	Title                string    `json:"title"`
	Subtitle             string    `json:"subtitle"`
	Author               string    `json:"author"`
}

// PostPagination is a page of summaries plus the cursor to the next one.
// An empty NextPage means there are no further pages.
type PostPagination struct {
	NextPage string        `json:"next_page"`
	Results  []PostSummary `json:"results"`
}

// HasMore reports whether another page can be loaded.
func (p PostPagination) HasMore() bool {
	return p.NextPage != ""
}

// Append returns a pagination holding p's results followed by page's, with
// page's cursor. Entries are never reordered or de-duplicated.
func (p PostPagination) Append(page PostPagination) PostPagination {
	results := make([]PostSummary, 0, len(p.Results)+len(page.Results))
	results = append(results, p.Results...)
	results = append(results, page.Results...)
	return PostPagination{NextPage: page.NextPage, Results: results}
}

// ContentBlock is one section of a post: a heading followed by rich text.
type ContentBlock struct {
	Heading string          `json:"heading"`
	Body    richtext.Blocks `json:"body"`
}

// PostDetail is everything the post page renders.
type PostDetail struct {
	UID                           string         `json:"uid"`
	FirstPublicationDate          time.Time      `json:"first_publication_date"`
	FormattedFirstPublicationDate string         `json:"formatted_first_publication_date"`
	Title                         string         `json:"title"`
	Subtitle                      string         `json:"subtitle"`
	BannerURL                     string         `json:"banner_url"`
	Author                        string         `json:"author"`
	Content                       []ContentBlock `json:"content"`
	ReadingTime                   int            `json:"reading_time"` // minutes
}

// Words counts the words of every heading and body in the post.
func (p *PostDetail) Words() int {
	n := 0
	for _, c := range p.Content {
		n += richtext.Blocks{{Text: c.Heading}}.Words()
		n += c.Body.Words()
	}
	return n
}
