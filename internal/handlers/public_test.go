// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacetraveling/internal/cache"
	"spacetraveling/internal/prismic/prismictest"
)

func TestHome(t *testing.T) {
	h := newHarness(t, harnessOptions{}, append(seedPosts(3), hooksPost())...)

	rr := h.get(t, "/")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, string(cache.StateMiss), rr.Header().Get("X-Cache"))

	doc := document(t, rr)
	assert.Equal(t, "Home | Spacetraveling", doc.Find("title").Text())

	items := doc.Find("#posts li")
	require.Equal(t, 4, items.Length())
	first := items.First()
	assert.Equal(t, "/post/como-utilizar-hooks", first.Find("a").AttrOr("href", ""))
	assert.Contains(t, first.Find("time").Text(), "25 mar 2021")
	assert.Contains(t, first.Text(), "Joseph Oliveira")
	assert.Equal(t, "/post/post-03", items.Eq(1).Find("a").AttrOr("href", ""), "newest first")

	assert.Zero(t, doc.Find("#load-more").Length(), "every post fits on the first page")
}

func TestHome_ServedFromCache(t *testing.T) {
	h := newHarness(t, harnessOptions{}, seedPosts(2)...)

	first := h.get(t, "/")
	require.Equal(t, http.StatusOK, first.Code)
	searches := h.cms.Searches()

	second := h.get(t, "/")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, string(cache.StateHit), second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, searches, h.cms.Searches(), "a fresh page is not regenerated")
}

func TestHome_RepositoryDown(t *testing.T) {
	h := newHarness(t, harnessOptions{}, seedPosts(2)...)
	h.cms.SetFailing(true)

	rr := h.get(t, "/")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, document(t, rr).Find("h1").Text(), "Algo deu errado")
	assert.Zero(t, h.store.Len(), "failures are not stored")

	h.cms.SetFailing(false)
	assert.Equal(t, http.StatusOK, h.get(t, "/").Code)
}

func TestPost(t *testing.T) {
	h := newHarness(t, harnessOptions{}, hooksPost())

	rr := h.get(t, "/post/como-utilizar-hooks")
	require.Equal(t, http.StatusOK, rr.Code)
	doc := document(t, rr)

	assert.Equal(t, "Como utilizar Hooks | Spacetraveling", doc.Find("title").Text())
	assert.Equal(t, "https://images.prismic.io/spacetraveling/como-utilizar-hooks.png", doc.Find("img.banner").AttrOr("src", ""))
	assert.Equal(t, "Como utilizar Hooks", doc.Find("h1").Text())
	assert.Contains(t, doc.Find(".info").Text(), "25 mar 2021")
	assert.Contains(t, doc.Find(".info").Text(), "Joseph Oliveira")
	assert.Contains(t, doc.Find(".info").Text(), "4 min")

	articles := doc.Find("article")
	require.Equal(t, 2, articles.Length())
	assert.Equal(t, "Proin et varius", articles.Eq(0).Find("h2").Text())
	assert.Equal(t, 2, articles.Eq(0).Find("p").Length())

	assert.Equal(t, "Cras laoreet mi", articles.Eq(1).Find("h2").Text())
	assert.Zero(t, articles.Eq(1).Find("div").Children().Length(), "empty body renders the heading only")
}

func TestPost_FallbackMatchesPrerendered(t *testing.T) {
	prerendered := newHarness(t, harnessOptions{}, hooksPost())
	require.NoError(t, prerendered.isr.Prime(context.Background(), cache.PostKey("como-utilizar-hooks"),
		prerendered.public.GeneratePost("como-utilizar-hooks")))

	fromCache := prerendered.get(t, "/post/como-utilizar-hooks")
	require.Equal(t, http.StatusOK, fromCache.Code)
	assert.Equal(t, string(cache.StateHit), fromCache.Header().Get("X-Cache"))

	lazy := newHarness(t, harnessOptions{}, hooksPost())
	onDemand := lazy.get(t, "/post/como-utilizar-hooks")
	require.Equal(t, http.StatusOK, onDemand.Code)
	assert.Equal(t, string(cache.StateMiss), onDemand.Header().Get("X-Cache"))

	assert.Equal(t, fromCache.Body.String(), onDemand.Body.String())
}

func TestPost_NotFound(t *testing.T) {
	h := newHarness(t, harnessOptions{}, hooksPost())

	rr := h.get(t, "/post/nao-existe")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, document(t, rr).Find("title").Text(), "Post não encontrado")
	assert.Zero(t, h.store.Len())
}

func TestPost_MalformedSlugSkipsRepository(t *testing.T) {
	h := newHarness(t, harnessOptions{}, hooksPost())
	before := h.cms.Searches()

	for _, path := range []string{"/post/Como-Utilizar-Hooks", "/post/hooks%22)", "/post/hooks.old"} {
		assert.Equal(t, http.StatusNotFound, h.get(t, path).Code, path)
	}
	assert.Equal(t, before, h.cms.Searches())
}

func TestPost_HyphenEdgedSlugReachesRepository(t *testing.T) {
	edged := prismictest.Post("-hooks-", "2021-03-25T19:25:28+0000", "Hooks", "", "Joseph Oliveira")
	h := newHarness(t, harnessOptions{}, edged)

	rr := h.get(t, "/post/-hooks-")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Hooks", document(t, rr).Find("h1.title").Text())
}

func TestPost_UnpublishedAfterCaching(t *testing.T) {
	h := newHarness(t, harnessOptions{}, hooksPost())
	ctx := context.Background()
	require.NoError(t, h.isr.Prime(ctx, cache.PostKey("como-utilizar-hooks"), h.public.GeneratePost("como-utilizar-hooks")))

	h.cms.SetDocuments()
	err := h.isr.Prime(ctx, cache.PostKey("como-utilizar-hooks"), h.public.GeneratePost("como-utilizar-hooks"))
	require.ErrorIs(t, err, cache.ErrGone)

	assert.Equal(t, http.StatusNotFound, h.get(t, "/post/como-utilizar-hooks").Code)
}

func TestPost_PlaceholderWhileGenerating(t *testing.T) {
	h := newHarness(t, harnessOptions{fallbackWait: 20 * time.Millisecond}, hooksPost())
	release := h.cms.Hold()
	defer release()

	rr := h.get(t, "/post/como-utilizar-hooks")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, string(cache.StatePending), rr.Header().Get("X-Cache"))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))

	doc := document(t, rr)
	assert.Equal(t, "Carregando...", doc.Find("p.loading").Text())
	assert.Equal(t, "1", doc.Find(`meta[http-equiv="refresh"]`).AttrOr("content", ""))

	release()
	h.isr.Wait()

	rr = h.get(t, "/post/como-utilizar-hooks")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, string(cache.StateHit), rr.Header().Get("X-Cache"))
	assert.Equal(t, "Como utilizar Hooks", document(t, rr).Find("h1").Text())
}
