// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"spacetraveling/internal/metrics"
	"spacetraveling/internal/middleware"
	"spacetraveling/internal/models"
	"spacetraveling/internal/posts"
)

// LoadMore serves the next listing page as an htmx fragment. The cursor is
// the repository's next_page URL handed out with the previous page.
//
// A failed fetch is logged and answered with 204 so the client keeps its
// list and control unchanged; the control re-enables itself.
func (p *Public) LoadMore(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("page")

	page, err := p.posts.LoadMore(r.Context(), cursor)
	if errors.Is(err, posts.ErrForeignCursor) {
		metrics.LoadMore.WithLabelValues("rejected").Inc()
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err != nil {
		metrics.LoadMore.WithLabelValues("failed").Inc()
		slog.Error("load more posts failed",
			"request_id", middleware.RequestIDFromCtx(r.Context()),
			"error", err,
		)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	body, err := p.renderer.MorePosts(page)
	if err != nil {
		metrics.LoadMore.WithLabelValues("failed").Inc()
		slog.Error("render more posts failed", "error", err)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	metrics.LoadMore.WithLabelValues("ok").Inc()
	w.Header().Set("Cache-Control", "no-store")
	writeHTML(w, http.StatusOK, body)
}

// paginationJSON mirrors PostPagination; next_page is null on the last page.
type paginationJSON struct {
	NextPage *string              `json:"next_page"`
	Results  []models.PostSummary `json:"results"`
}

func toPaginationJSON(p models.PostPagination) paginationJSON {
	out := paginationJSON{Results: p.Results}
	if out.Results == nil {
		out.Results = []models.PostSummary{}
	}
	if p.HasMore() {
		next := p.NextPage
		out.NextPage = &next
	}
	return out
}

// APIPosts returns a listing page as JSON: the first page without a
// cursor, otherwise the page the cursor points at.
func (p *Public) APIPosts(w http.ResponseWriter, r *http.Request) {
	var (
		page models.PostPagination
		err  error
	)
	if cursor := r.URL.Query().Get("page"); cursor != "" {
		page, err = p.posts.LoadMore(r.Context(), cursor)
	} else {
		page, err = p.posts.Listing(r.Context())
	}

	switch {
	case errors.Is(err, posts.ErrForeignCursor):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	case err != nil:
		slog.Error("api posts failed",
			"request_id", middleware.RequestIDFromCtx(r.Context()),
			"error", err,
		)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "content repository unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, toPaginationJSON(page))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode json response failed", "error", err)
	}
}
