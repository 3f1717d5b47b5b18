// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"spacetraveling/internal/cache"
	"spacetraveling/internal/datefmt"
	"spacetraveling/internal/models"
	"spacetraveling/internal/posts"
	"spacetraveling/internal/prismic"
	"spacetraveling/internal/prismic/prismictest"
	"spacetraveling/internal/render"
	"spacetraveling/internal/richtext"
	"spacetraveling/internal/sanitize"
)

// harness wires the handlers to a fake repository.
type harness struct {
	cms    *prismictest.Server
	public *Public
	isr    *cache.Revalidator
	store  *cache.MemoryStore
	router http.Handler
}

type harnessOptions struct {
	pageSize     int
	fallbackWait time.Duration
	accessToken  string // makes the fake repository private
}

func newHarness(t *testing.T, opts harnessOptions, docs ...prismic.Document) *harness {
	t.Helper()
	if opts.pageSize == 0 {
		opts.pageSize = 20
	}

	cms := prismictest.New(t, docs...)
	cms.RequireToken(opts.accessToken)
	client, err := prismic.New(prismic.Options{Endpoint: cms.Endpoint(), AccessToken: opts.accessToken})
	require.NoError(t, err)

	svc, err := posts.NewService(client, posts.Options{
		Endpoint:         cms.Endpoint(),
		PageSize:         opts.pageSize,
		StaticPathsLimit: 10,
		Parse:            models.ParseOptions{Dates: datefmt.New("pt-BR", time.UTC)},
	})
	require.NoError(t, err)

	rn, err := render.New(richtext.New(nil, sanitize.Policy()), "pt-BR")
	require.NoError(t, err)

	store := cache.NewMemoryStore(64)
	isr := cache.NewRevalidator(store, cache.Options{Window: time.Hour, FallbackWait: opts.fallbackWait})
	t.Cleanup(isr.Wait)

	pub := NewPublic(svc, rn, isr, Options{Refresh: time.Second, SiteURL: "https://spacetraveling.example"})

	r := chi.NewRouter()
	r.Get("/", pub.Home)
	r.Get("/post/{uid}", pub.Post)
	r.Get("/posts/more", pub.LoadMore)
	r.Get("/api/posts", pub.APIPosts)
	r.Get("/feed.xml", pub.Feed)

	return &harness{cms: cms, public: pub, isr: isr, store: store, router: r}
}

func (h *harness) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)
	return rr
}

func document(t *testing.T, rr *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rr.Body.String()))
	require.NoError(t, err)
	return doc
}

// seedPosts builds n posts published on consecutive days of March 2021,
// post-01 being the oldest.
func seedPosts(n int) []prismic.Document {
	docs := make([]prismic.Document, 0, n)
	for i := 1; i <= n; i++ {
		uid := fmt.Sprintf("post-%02d", i)
		date := fmt.Sprintf("2021-03-%02dT12:00:00+0000", i)
		docs = append(docs, prismictest.Post(uid, date, "Post "+uid, "Subtítulo "+uid, "Autor "+uid,
			prismictest.Section{Heading: "Introdução", Paragraphs: []string{"Lorem ipsum dolor sit amet."}},
		))
	}
	return docs
}

func hooksPost() prismic.Document {
	return prismictest.Post("como-utilizar-hooks", "2021-03-25T19:25:28+0000",
		"Como utilizar Hooks", "Pensando em sincronização em vez de ciclos de vida", "Joseph Oliveira",
		prismictest.Section{Heading: "Proin et varius", Paragraphs: []string{"Lorem ipsum dolor sit amet.", "Nullam dolor sapien."}},
		prismictest.Section{Heading: "Cras laoreet mi"},
	)
}
