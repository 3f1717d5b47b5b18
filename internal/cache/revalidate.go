// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"spacetraveling/internal/metrics"
)

// State describes how Serve produced its result.
type State string

const (
	// StateHit is a stored page younger than the window.
	StateHit State = "hit"
	// StateStale is a stored page older than the window; a background
	// regeneration was started.
	StateStale State = "stale"
	// StateMiss is a page generated during the request.
	StateMiss State = "miss"
	// StatePending means generation outlasted the fallback wait. It keeps
	// running and stores its result for later requests.
	StatePending State = "pending"
)

// ErrGone marks a generation error for a page that no longer exists. Any
// stored copy of the page is removed.
var ErrGone = errors.New("page gone")

// GenerateFunc renders a page.
type GenerateFunc func(ctx context.Context) ([]byte, error)

// Options configures a Revalidator.
type Options struct {
	// Window is how long a generated page is served without regeneration.
	Window time.Duration
	// FallbackWait bounds how long a request waits for a missing page. Zero
	// waits for generation to finish.
	FallbackWait time.Duration
	// GenerateTimeout bounds one generation. Defaults to 30s.
	GenerateTimeout time.Duration
}

// Revalidator serves generated pages from a Store, regenerating them in the
// background once they are older than the window. Concurrent generations of
// the same key are collapsed into one.
type Revalidator struct {
	store Store
	opts  Options
	group singleflight.Group
	wg    sync.WaitGroup
	now   func() time.Time
}

// NewRevalidator creates a Revalidator over store.
func NewRevalidator(store Store, opts Options) *Revalidator {
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = 30 * time.Second
	}
	return &Revalidator{store: store, opts: opts, now: time.Now}
}

// Serve returns the page stored under key, generating it when missing.
// Generation errors are returned to the caller and never stored; a stale
// page stays in place when its background regeneration fails.
func (r *Revalidator) Serve(ctx context.Context, key string, gen GenerateFunc) ([]byte, State, error) {
	if e, ok := r.store.Get(ctx, key); ok {
		if r.now().Sub(e.GeneratedAt) < r.opts.Window {
			return e.HTML, StateHit, nil
		}
		r.start(key, gen, "background")
		return e.HTML, StateStale, nil
	}

	ch := r.start(key, gen, "request")

	var timeout <-chan time.Time
	if r.opts.FallbackWait > 0 {
		t := time.NewTimer(r.opts.FallbackWait)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, StateMiss, res.Err
		}
		return res.Val.([]byte), StateMiss, nil
	case <-timeout:
		return nil, StatePending, nil
	case <-ctx.Done():
		return nil, StateMiss, ctx.Err()
	}
}

// Prime generates and stores the page under key regardless of what is
// stored, waiting for the result. The generation is shared with concurrent
// Serve calls, so cancelling ctx stops the wait but not the generation.
func (r *Revalidator) Prime(ctx context.Context, key string, gen GenerateFunc) error {
	select {
	case res := <-r.start(key, gen, "prime"):
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until every started generation has finished.
func (r *Revalidator) Wait() {
	r.wg.Wait()
}

// start runs a detached generation of key, joining one already in flight.
// The returned channel receives its result.
func (r *Revalidator) start(key string, gen GenerateFunc, trigger string) <-chan singleflight.Result {
	r.wg.Add(1)
	ch := r.group.DoChan(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), r.opts.GenerateTimeout)
		defer cancel()
		return r.generate(ctx, key, gen, trigger)
	})

	out := make(chan singleflight.Result, 1)
	go func() {
		defer r.wg.Done()
		out <- <-ch
	}()
	return out
}

func (r *Revalidator) generate(ctx context.Context, key string, gen GenerateFunc, trigger string) ([]byte, error) {
	start := time.Now()
	html, err := gen(ctx)
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.Regenerations.WithLabelValues(trigger, "error").Inc()
		if errors.Is(err, ErrGone) {
			r.store.Delete(ctx, key)
			return nil, err
		}
		slog.Warn("page generation failed", "key", key, "trigger", trigger, "error", err)
		return nil, err
	}

	r.store.Set(ctx, key, &Entry{HTML: html, GeneratedAt: r.now()})
	metrics.Regenerations.WithLabelValues(trigger, "ok").Inc()
	slog.Debug("page generated", "key", key, "trigger", trigger, "duration", time.Since(start))
	return html, nil
}
