// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/feeds"

	"spacetraveling/internal/cache"
	"spacetraveling/internal/metrics"
	"spacetraveling/internal/render"
)

// FeedKey is the revalidator key of the RSS feed.
const FeedKey = "feed"

// Feed serves the first listing page as RSS 2.0.
func (p *Public) Feed(w http.ResponseWriter, r *http.Request) {
	body, state, err := p.isr.Serve(r.Context(), FeedKey, p.GenerateFeed)
	if err != nil || state == cache.StatePending {
		if err != nil {
			metrics.PageServes.WithLabelValues("feed", "error").Inc()
			p.logFailure(r, "feed", err)
		}
		w.Header().Set("Retry-After", "60")
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}
	metrics.PageServes.WithLabelValues("feed", string(state)).Inc()
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Header().Set("X-Cache", string(state))
	w.Write(body)
}

// GenerateFeed renders the RSS feed from the repository.
func (p *Public) GenerateFeed(ctx context.Context) ([]byte, error) {
	list, err := p.posts.Listing(ctx)
	if err != nil {
		return nil, err
	}

	base := strings.TrimRight(p.opts.SiteURL, "/")
	feed := &feeds.Feed{
		Title:       render.SiteName,
		Link:        &feeds.Link{Href: base + "/"},
		Description: "Posts do " + render.SiteName,
		Id:          base + "/",
	}
	for _, s := range list.Results {
		link := base + "/post/" + url.PathEscape(s.UID)
		feed.Items = append(feed.Items, &feeds.Item{
			Title:       s.Title,
			Link:        &feeds.Link{Href: link},
			Id:          link,
			Author:      &feeds.Author{Name: s.Author},
			Description: s.Subtitle,
			Created:     s.FirstPublicationDate,
		})
	}
	if len(list.Results) > 0 {
		feed.Created = list.Results[0].FirstPublicationDate
	}

	rss, err := feed.ToRss()
	if err != nil {
		return nil, fmt.Errorf("encode rss: %w", err)
	}
	return []byte(rss), nil
}
