// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package posts loads the data behind every page: the listing, further
// listing pages via the repository cursor, the set of pre-rendered post
// paths and individual posts.
package posts

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/purell"

	"spacetraveling/internal/models"
	"spacetraveling/internal/prismic"
)

// DocumentType is the custom type posts are stored under.
const DocumentType = "posts"

var (
	// ErrNotFound is returned when no post has the requested UID.
	ErrNotFound = errors.New("post not found")
	// ErrForeignCursor is returned for cursors that do not point at the
	// configured repository's search endpoint.
	ErrForeignCursor = errors.New("cursor does not belong to the content repository")
)

// Repository is the subset of the content client the service depends on.
type Repository interface {
	Query(ctx context.Context, preds []prismic.Predicate, opts prismic.QueryOptions) (*prismic.Response, error)
	GetByUID(ctx context.Context, docType, uid string) (*prismic.Document, error)
	Fetch(ctx context.Context, cursor string) (*prismic.Response, error)
}

// Options configures a Service.
type Options struct {
	// Endpoint is the repository API endpoint; cursors must share its
	// scheme, host and path prefix.
	Endpoint         string
	PageSize         int
	StaticPathsLimit int
	Parse            models.ParseOptions
}

// Service shapes repository responses into view records.
type Service struct {
	repo         Repository
	opts         Options
	cursorPrefix string
}

// NewService creates a Service backed by repo.
func NewService(repo Repository, opts Options) (*Service, error) {
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	if opts.StaticPathsLimit < 0 {
		opts.StaticPathsLimit = 0
	}
	if opts.Parse.Dates == nil {
		return nil, fmt.Errorf("posts: a date formatter is required")
	}
	prefix, err := normalize(strings.TrimRight(opts.Endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("posts: endpoint: %w", err)
	}
	return &Service{repo: repo, opts: opts, cursorPrefix: prefix + "/documents/search"}, nil
}

// newestFirst is the explicit listing order.
var newestFirst = []prismic.Ordering{{Field: "document.first_publication_date", Desc: true}}

// Listing returns the first page of posts, newest first.
func (s *Service) Listing(ctx context.Context) (models.PostPagination, error) {
	resp, err := s.repo.Query(ctx, []prismic.Predicate{prismic.DocumentType(DocumentType)}, prismic.QueryOptions{
		PageSize:  s.opts.PageSize,
		Orderings: newestFirst,
	})
	if err != nil {
		return models.PostPagination{}, fmt.Errorf("list posts: %w", err)
	}
	return models.ParsePagination(resp, s.opts.Parse)
}

// LoadMore follows a next_page cursor previously handed out by Listing or
// LoadMore. Cursors pointing anywhere else are rejected with
// ErrForeignCursor before any request is made.
func (s *Service) LoadMore(ctx context.Context, cursor string) (models.PostPagination, error) {
	if err := s.CheckCursor(cursor); err != nil {
		return models.PostPagination{}, err
	}
	resp, err := s.repo.Fetch(ctx, cursor)
	if err != nil {
		return models.PostPagination{}, fmt.Errorf("load more posts: %w", err)
	}
	return models.ParsePagination(resp, s.opts.Parse)
}

// CheckCursor verifies that cursor targets the repository search endpoint.
func (s *Service) CheckCursor(cursor string) error {
	if cursor == "" {
		return ErrForeignCursor
	}
	norm, err := normalize(cursor)
	if err != nil {
		return ErrForeignCursor
	}
	u, err := url.Parse(norm)
	if err != nil {
		return ErrForeignCursor
	}
	u.RawQuery = ""
	u.Fragment = ""
	if u.String() != s.cursorPrefix {
		return ErrForeignCursor
	}
	return nil
}

// StaticPaths returns the UIDs of the posts rendered ahead of requests.
func (s *Service) StaticPaths(ctx context.Context) ([]string, error) {
	if s.opts.StaticPathsLimit == 0 {
		return nil, nil
	}
	resp, err := s.repo.Query(ctx, []prismic.Predicate{prismic.DocumentType(DocumentType)}, prismic.QueryOptions{
		PageSize:  s.opts.StaticPathsLimit,
		Orderings: newestFirst,
	})
	if err != nil {
		return nil, fmt.Errorf("list static paths: %w", err)
	}
	uids := make([]string, 0, len(resp.Results))
	for _, d := range resp.Results {
		if d.UID != "" {
			uids = append(uids, d.UID)
		}
	}
	return uids, nil
}

// Post returns the post with the given UID, or ErrNotFound.
func (s *Service) Post(ctx context.Context, uid string) (*models.PostDetail, error) {
	doc, err := s.repo.GetByUID(ctx, DocumentType, uid)
	if errors.Is(err, prismic.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post %q: %w", uid, err)
	}
	return models.ParseDetail(doc, s.opts.Parse)
}

// normalize canonicalizes a URL so that equivalent spellings compare equal.
func normalize(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("not an absolute URL: %q", raw)
	}
	return purell.NormalizeURLString(raw, purell.FlagsSafe|purell.FlagRemoveDotSegments|purell.FlagRemoveDuplicateSlashes)
}
