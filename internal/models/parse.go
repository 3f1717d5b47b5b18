// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"spacetraveling/internal/prismic"
)

// DocumentError reports a repository document that cannot be shaped into a
// view record.
type DocumentError struct {
	UID    string
	Field  string
	Reason string
}

func (e *DocumentError) Error() string {
	uid := e.UID
	if uid == "" {
		uid = "<no uid>"
	}
	return fmt.Sprintf("document %s: field %s: %s", uid, e.Field, e.Reason)
}

// DateFormatter renders publication dates for display.
type DateFormatter interface {
	Format(time.Time) string
}

// ParseOptions controls how documents become view records.
type ParseOptions struct {
	Dates DateFormatter
	// ReadingWPM computes the reading time from the word count when > 0;
	// otherwise StaticReadingTime is used.
	ReadingWPM int
}

// postData mirrors the "posts" custom type. Optional fields use pointers or
// raw messages so absent and mistyped values can be told apart.
type postData struct {
	Title    *string         `json:"title"`
	Subtitle *string         `json:"subtitle"`
	Author   *string         `json:"author"`
	Banner   *struct {
		URL string `json:"url"`
	} `json:"banner"`
	Content []struct {
		Heading *string         `json:"heading"`
		Body    json.RawMessage `json:"body"`
	} `json:"content"`
}

func decodeData(doc *prismic.Document) (*postData, error) {
	if len(doc.Data) == 0 || string(doc.Data) == "null" {
		return nil, &DocumentError{UID: doc.UID, Field: "data", Reason: "missing"}
	}
	var data postData
	if err := json.Unmarshal(doc.Data, &data); err != nil {
		return nil, &DocumentError{UID: doc.UID, Field: "data", Reason: err.Error()}
	}
	if data.Title == nil || strings.TrimSpace(*data.Title) == "" {
		return nil, &DocumentError{UID: doc.UID, Field: "data.title", Reason: "missing"}
	}
	if data.Author == nil || strings.TrimSpace(*data.Author) == "" {
		return nil, &DocumentError{UID: doc.UID, Field: "data.author", Reason: "missing"}
	}
	return &data, nil
}

func parseUID(doc *prismic.Document) error {
	if doc.UID == "" {
		return &DocumentError{Field: "uid", Reason: "missing"}
	}
	return nil
}

// ParseDate reads a repository timestamp such as 2021-03-25T19:25:28+0000.
func ParseDate(uid, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, &DocumentError{UID: uid, Field: "first_publication_date", Reason: "missing"}
	}
	t, err := dateparse.ParseStrict(raw)
	if err != nil {
		return time.Time{}, &DocumentError{UID: uid, Field: "first_publication_date", Reason: err.Error()}
	}
	return t.UTC(), nil
}

// ParseSummary shapes a document into a listing entry.
func ParseSummary(doc *prismic.Document, opts ParseOptions) (PostSummary, error) {
	if err := parseUID(doc); err != nil {
		return PostSummary{}, err
	}
	published, err := ParseDate(doc.UID, doc.FirstPublicationDate)
	if err != nil {
		return PostSummary{}, err
	}
	data, err := decodeData(doc)
	if err != nil {
		return PostSummary{}, err
	}

	s := PostSummary{
		UID:                  doc.UID,
		FirstPublicationDate: published,
		FormattedDate:        opts.Dates.Format(published),
		Title:                *data.Title,
		Author:               *data.Author,
	}
	if data.Subtitle != nil {
		s.Subtitle = *data.Subtitle
	}
	return s, nil
}

// ParsePagination shapes a search response into a listing page.
func ParsePagination(resp *prismic.Response, opts ParseOptions) (PostPagination, error) {
	page := PostPagination{
		NextPage: resp.Next(),
		Results:  make([]PostSummary, 0, len(resp.Results)),
	}
	for i := range resp.Results {
		s, err := ParseSummary(&resp.Results[i], opts)
		if err != nil {
			return PostPagination{}, err
		}
		page.Results = append(page.Results, s)
	}
	return page, nil
}

// ParseDetail shapes a document into a post page. The display date is
// formatted here, once, rather than on every render.
func ParseDetail(doc *prismic.Document, opts ParseOptions) (*PostDetail, error) {
	if err := parseUID(doc); err != nil {
		return nil, err
	}
	published, err := ParseDate(doc.UID, doc.FirstPublicationDate)
	if err != nil {
		return nil, err
	}
	data, err := decodeData(doc)
	if err != nil {
		return nil, err
	}

	p := &PostDetail{
		UID:                           doc.UID,
		FirstPublicationDate:          published,
		FormattedFirstPublicationDate: opts.Dates.Format(published),
		Title:                         *data.Title,
		Author:                        *data.Author,
		Content:                       make([]ContentBlock, 0, len(data.Content)),
	}
	if data.Subtitle != nil {
		p.Subtitle = *data.Subtitle
	}
	if data.Banner != nil {
		p.BannerURL = data.Banner.URL
	}

	for i, c := range data.Content {
		block := ContentBlock{}
		if c.Heading != nil {
			block.Heading = *c.Heading
		}
		if len(c.Body) > 0 && string(c.Body) != "null" {
			if err := json.Unmarshal(c.Body, &block.Body); err != nil {
				return nil, &DocumentError{
					UID:    doc.UID,
					Field:  fmt.Sprintf("data.content[%d].body", i),
					Reason: err.Error(),
				}
			}
		}
		p.Content = append(p.Content, block)
	}

	p.ReadingTime = StaticReadingTime
	if opts.ReadingWPM > 0 {
		p.ReadingTime = ReadingTime(p.Words(), opts.ReadingWPM)
	}
	return p, nil
}

// ReadingTime returns whole minutes needed to read words at wpm, never
// less than one.
func ReadingTime(words, wpm int) int {
	if wpm <= 0 {
		return StaticReadingTime
	}
	minutes := int(math.Ceil(float64(words) / float64(wpm)))
	if minutes < 1 {
		return 1
	}
	return minutes
}
