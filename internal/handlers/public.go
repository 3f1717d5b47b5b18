// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers serves the public site: the listing, post pages, the
// load-more fragment and its JSON twin, and the RSS feed.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"spacetraveling/internal/cache"
	"spacetraveling/internal/metrics"
	"spacetraveling/internal/middleware"
	"spacetraveling/internal/models"
	"spacetraveling/internal/posts"
	"spacetraveling/internal/render"
	"spacetraveling/internal/slug"
)

// Posts is the page data the handlers need.
type Posts interface {
	Listing(ctx context.Context) (models.PostPagination, error)
	LoadMore(ctx context.Context, cursor string) (models.PostPagination, error)
	Post(ctx context.Context, uid string) (*models.PostDetail, error)
}

// Options configures the public handlers.
type Options struct {
	// Refresh is how soon the loading placeholder reloads itself.
	Refresh time.Duration
	// SiteURL is the absolute base URL used in the feed.
	SiteURL string
}

// Public groups handlers for the public-facing site. Full pages go through
// the revalidator so they are generated at most once per window.
type Public struct {
	posts    Posts
	renderer *render.Renderer
	isr      *cache.Revalidator
	opts     Options
}

// NewPublic creates a new Public handler group.
func NewPublic(p Posts, rn *render.Renderer, isr *cache.Revalidator, opts Options) *Public {
	if opts.Refresh <= 0 {
		opts.Refresh = 2 * time.Second
	}
	return &Public{posts: p, renderer: rn, isr: isr, opts: opts}
}

// Home serves the listing page.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	html, state, err := p.isr.Serve(r.Context(), cache.HomeKey, p.GenerateHome)
	p.servePage(w, r, "home", html, state, err)
}

// Post serves a post page. Posts outside the pre-rendered set are generated
// on first request; a placeholder is served if that takes too long.
func (p *Public) Post(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	if !slug.Valid(uid) {
		p.notFound(w, r)
		return
	}

	html, state, err := p.isr.Serve(r.Context(), cache.PostKey(uid), p.GeneratePost(uid))
	p.servePage(w, r, "post", html, state, err)
}

// GenerateHome renders the listing page from the repository.
func (p *Public) GenerateHome(ctx context.Context) ([]byte, error) {
	list, err := p.posts.Listing(ctx)
	if err != nil {
		return nil, err
	}
	return p.renderer.Home(list)
}

// GeneratePost returns a generator for the page of uid. A post missing
// from the repository is reported as cache.ErrGone.
func (p *Public) GeneratePost(uid string) cache.GenerateFunc {
	return func(ctx context.Context) ([]byte, error) {
		post, err := p.posts.Post(ctx, uid)
		if errors.Is(err, posts.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", cache.ErrGone, err)
		}
		if err != nil {
			return nil, err
		}
		return p.renderer.Post(post)
	}
}

func (p *Public) servePage(w http.ResponseWriter, r *http.Request, page string, html []byte, state cache.State, err error) {
	switch {
	case errors.Is(err, cache.ErrGone):
		metrics.PageServes.WithLabelValues(page, "not_found").Inc()
		p.notFound(w, r)
		return
	case err != nil:
		metrics.PageServes.WithLabelValues(page, "error").Inc()
		p.logFailure(r, page, err)
		p.errorPage(w, r)
		return
	}

	metrics.PageServes.WithLabelValues(page, string(state)).Inc()
	w.Header().Set("X-Cache", string(state))

	if state == cache.StatePending {
		loading, err := p.renderer.Loading(p.opts.Refresh)
		if err != nil {
			slog.Error("render loading page failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		writeHTML(w, http.StatusOK, loading)
		return
	}

	writeHTML(w, http.StatusOK, html)
}

func (p *Public) logFailure(r *http.Request, page string, err error) {
	slog.Error("page generation failed",
		"page", page,
		"path", r.URL.Path,
		"request_id", middleware.RequestIDFromCtx(r.Context()),
		"error", err,
	)
}

func (p *Public) notFound(w http.ResponseWriter, r *http.Request) {
	body, err := p.renderer.NotFound()
	if err != nil {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, http.StatusNotFound, body)
}

func (p *Public) errorPage(w http.ResponseWriter, r *http.Request) {
	body, err := p.renderer.Error()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusInternalServerError, body)
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}
