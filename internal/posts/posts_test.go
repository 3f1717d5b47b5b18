// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package posts

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacetraveling/internal/datefmt"
	"spacetraveling/internal/models"
	"spacetraveling/internal/prismic"
	"spacetraveling/internal/prismic/prismictest"
)

// seedPosts builds n posts published on consecutive days of March 2021,
// post-01 being the oldest.
func seedPosts(n int) []prismic.Document {
	docs := make([]prismic.Document, 0, n)
	for i := 1; i <= n; i++ {
		uid := fmt.Sprintf("post-%02d", i)
		date := fmt.Sprintf("2021-03-%02dT12:00:00+0000", i)
		docs = append(docs, prismictest.Post(uid, date, "Post "+uid, "Sub", "Autor"))
	}
	return docs
}

func newService(t *testing.T, srv *prismictest.Server, pageSize, staticPaths int) *Service {
	t.Helper()
	client, err := prismic.New(prismic.Options{Endpoint: srv.Endpoint()})
	require.NoError(t, err)
	svc, err := NewService(client, Options{
		Endpoint:         srv.Endpoint(),
		PageSize:         pageSize,
		StaticPathsLimit: staticPaths,
		Parse:            models.ParseOptions{Dates: datefmt.New("pt-BR", time.UTC)},
	})
	require.NoError(t, err)
	return svc
}

func uids(p models.PostPagination) []string {
	out := make([]string, len(p.Results))
	for i, s := range p.Results {
		out[i] = s.UID
	}
	return out
}

func TestNewService_RequiresFormatter(t *testing.T) {
	_, err := NewService(nil, Options{Endpoint: "https://repo.cdn.prismic.io/api/v2"})
	assert.Error(t, err)
}

func TestListing_NewestFirst(t *testing.T) {
	srv := prismictest.New(t, seedPosts(3)...)
	svc := newService(t, srv, 20, 10)

	page, err := svc.Listing(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"post-03", "post-02", "post-01"}, uids(page))
	assert.Equal(t, "03 mar 2021", page.Results[0].FormattedDate)
}

func TestListing_FewerThanPageSize(t *testing.T) {
	srv := prismictest.New(t, seedPosts(5)...)
	svc := newService(t, srv, 20, 10)

	page, err := svc.Listing(context.Background())
	require.NoError(t, err)
	assert.Len(t, page.Results, 5)
	assert.False(t, page.HasMore(), "all documents fit, next_page must be empty")
}

func TestLoadMore_AppendsUntilExhausted(t *testing.T) {
	srv := prismictest.New(t, seedPosts(5)...)
	svc := newService(t, srv, 2, 10)
	ctx := context.Background()

	list, err := svc.Listing(ctx)
	require.NoError(t, err)
	require.True(t, list.HasMore())

	for list.HasMore() {
		before := len(list.Results)
		page, err := svc.LoadMore(ctx, list.NextPage)
		require.NoError(t, err)
		list = list.Append(page)
		assert.Equal(t, before+len(page.Results), len(list.Results))
	}

	assert.Equal(t, []string{"post-05", "post-04", "post-03", "post-02", "post-01"}, uids(list))
}

func TestLoadMore_RejectsForeignCursors(t *testing.T) {
	srv := prismictest.New(t, seedPosts(1)...)
	svc := newService(t, srv, 20, 10)

	for _, cursor := range []string{
		"",
		"https://evil.example/api/v2/documents/search?page=2",
		srv.Endpoint() + "/../admin?page=2",
		srv.Endpoint() + "/documents/other?page=2",
		"javascript:alert(1)",
		"/api/v2/documents/search?page=2",
	} {
		_, err := svc.LoadMore(context.Background(), cursor)
		assert.ErrorIs(t, err, ErrForeignCursor, "cursor %q", cursor)
	}
	assert.Equal(t, 0, srv.Searches(), "foreign cursors must not be fetched")
}

func TestCheckCursor_AcceptsEquivalentSpelling(t *testing.T) {
	srv := prismictest.New(t)
	svc := newService(t, srv, 20, 10)

	assert.NoError(t, svc.CheckCursor(srv.Endpoint()+"/documents/search?page=2&ref=x"))
	assert.NoError(t, svc.CheckCursor(srv.Endpoint()+"//documents/./search?page=2"))
}

func TestLoadMore_FetchFailure(t *testing.T) {
	srv := prismictest.New(t, seedPosts(3)...)
	svc := newService(t, srv, 2, 10)

	list, err := svc.Listing(context.Background())
	require.NoError(t, err)

	srv.SetFailing(true)
	_, err = svc.LoadMore(context.Background(), list.NextPage)
	var apiErr *prismic.APIError
	assert.True(t, errors.As(err, &apiErr), "got %v", err)
}

func TestStaticPaths(t *testing.T) {
	srv := prismictest.New(t, seedPosts(12)...)

	paths, err := newService(t, srv, 20, 10).StaticPaths(context.Background())
	require.NoError(t, err)
	assert.Len(t, paths, 10)
	assert.Equal(t, "post-12", paths[0])

	paths, err = newService(t, srv, 20, 0).StaticPaths(context.Background())
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestPost(t *testing.T) {
	srv := prismictest.New(t, prismictest.Post("como-utilizar-hooks", "2021-03-25T19:25:28+0000",
		"Como utilizar Hooks", "Pensando em sincronização", "Joseph Oliveira",
		prismictest.Section{Heading: "Proin et varius", Paragraphs: []string{"Lorem ipsum"}},
	))
	svc := newService(t, srv, 20, 10)

	post, err := svc.Post(context.Background(), "como-utilizar-hooks")
	require.NoError(t, err)
	assert.Equal(t, "Como utilizar Hooks", post.Title)
	assert.Equal(t, "25 mar 2021", post.FormattedFirstPublicationDate)
	require.Len(t, post.Content, 1)
	assert.Equal(t, "Proin et varius", post.Content[0].Heading)

	_, err = svc.Post(context.Background(), "nao-existe")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPost_Malformed(t *testing.T) {
	bad := prismictest.Post("quebrado", "2021-03-25T19:25:28+0000", "", "", "Autor")
	srv := prismictest.New(t, bad)
	svc := newService(t, srv, 20, 10)

	_, err := svc.Post(context.Background(), "quebrado")
	var docErr *models.DocumentError
	assert.True(t, errors.As(err, &docErr), "got %v", err)
}
