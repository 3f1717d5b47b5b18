// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"spacetraveling/internal/cache"
	"spacetraveling/internal/config"
	"spacetraveling/internal/datefmt"
	"spacetraveling/internal/handlers"
	"spacetraveling/internal/models"
	"spacetraveling/internal/posts"
	"spacetraveling/internal/prismic"
	"spacetraveling/internal/render"
	"spacetraveling/internal/richtext"
	"spacetraveling/internal/sanitize"
)

// site holds the dependencies shared by serve and warm.
type site struct {
	posts  *posts.Service
	public *handlers.Public
	isr    *cache.Revalidator
	store  cache.Store
	valkey *redis.Client
}

// build wires the content client, page data service, renderer and page
// store from cfg.
func build(cfg *config.Config) (*site, error) {
	client, err := prismic.New(prismic.Options{
		Endpoint:    cfg.PrismicEndpoint,
		AccessToken: cfg.PrismicAccessToken,
		MaxRetries:  cfg.PrismicMaxRetries,
		Timeout:     cfg.PrismicTimeout,
		Logger:      slog.Default(),
	})
	if err != nil {
		return nil, err
	}

	dates := datefmt.New(cfg.Locale, cfg.Location())
	svc, err := posts.NewService(client, posts.Options{
		Endpoint:         cfg.PrismicEndpoint,
		PageSize:         cfg.ListingPageSize,
		StaticPathsLimit: cfg.StaticPathsLimit,
		Parse:            models.ParseOptions{Dates: dates, ReadingWPM: cfg.ReadingWPM},
	})
	if err != nil {
		return nil, err
	}

	var sanitizer richtext.Sanitizer
	if cfg.SanitizeHTML {
		sanitizer = sanitize.Policy()
	} else {
		slog.Warn("rich text sanitization disabled; repository HTML is trusted as-is")
	}
	rn, err := render.New(richtext.New(richtext.PostLinkResolver, sanitizer), dates.Locale().String())
	if err != nil {
		return nil, fmt.Errorf("initialize template renderer: %w", err)
	}

	s := &site{posts: svc}
	if cfg.UseValkey() {
		s.valkey, err = cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			return nil, fmt.Errorf("connect to valkey: %w", err)
		}
		// Stale pages stay servable for a few windows after they expire.
		s.store = cache.NewValkeyStore(s.valkey, 4*cfg.Revalidate)
	} else {
		s.store = cache.NewMemoryStore(cfg.CacheCapacity)
	}

	s.isr = cache.NewRevalidator(s.store, cache.Options{
		Window:          cfg.Revalidate,
		FallbackWait:    cfg.FallbackWait,
		GenerateTimeout: 2*cfg.PrismicTimeout + 5*time.Second,
	})
	s.public = handlers.NewPublic(svc, rn, s.isr, handlers.Options{
		Refresh: cfg.FallbackWait,
		SiteURL: cfg.SiteURL,
	})
	return s, nil
}

// Warm generates the listing, the feed and every pre-rendered post. All
// pages are attempted; failures are returned together.
func (s *site) Warm(ctx context.Context) error {
	start := time.Now()
	var errs []error

	if err := s.isr.Prime(ctx, cache.HomeKey, s.public.GenerateHome); err != nil {
		errs = append(errs, fmt.Errorf("listing: %w", err))
	}
	if err := s.isr.Prime(ctx, handlers.FeedKey, s.public.GenerateFeed); err != nil {
		errs = append(errs, fmt.Errorf("feed: %w", err))
	}

	uids, err := s.posts.StaticPaths(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	for _, uid := range uids {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if err := s.isr.Prime(ctx, cache.PostKey(uid), s.public.GeneratePost(uid)); err != nil {
			errs = append(errs, fmt.Errorf("post %q: %w", uid, err))
		}
	}

	slog.Info("pages warmed", "posts", len(uids), "failed", len(errs), "duration", time.Since(start))
	return errors.Join(errs...)
}

// Close releases the Valkey connection, if any.
func (s *site) Close() {
	if s.valkey != nil {
		s.valkey.Close()
	}
}
