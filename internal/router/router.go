// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// Spacetraveling site.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"spacetraveling/internal/handlers"
	"spacetraveling/internal/middleware"
	"spacetraveling/internal/render"
)

// New creates and returns the configured Chi router. static is served under
// /static/; loadMore limits the load-more and JSON listing routes.
func New(public *handlers.Public, static fs.FS, loadMore *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, outermost first.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", staticHandler(static)))

	r.Get("/", public.Home)
	r.Get("/post/{uid}", public.Post)
	r.Get("/feed.xml", public.Feed)

	// Each request here reaches the content repository.
	r.Group(func(r chi.Router) {
		r.Use(loadMore.Middleware)
		r.Get(render.LoadMorePath, public.LoadMore)
		r.Get("/api/posts", public.APIPosts)
	})

	return r
}

// staticHandler serves embedded assets with a day of browser caching.
func staticHandler(static fs.FS) http.Handler {
	files := http.FileServer(http.FS(static))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		files.ServeHTTP(w, r)
	})
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
