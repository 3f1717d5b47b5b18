// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMore_UntilExhausted(t *testing.T) {
	h := newHarness(t, harnessOptions{pageSize: 2}, seedPosts(5)...)

	home := document(t, h.get(t, "/"))
	require.Equal(t, 2, home.Find("#posts li").Length())
	next, ok := home.Find("button#load-more").Attr("hx-get")
	require.True(t, ok, "more posts exist, the control is shown")

	var uids []string
	home.Find("#posts li a").Each(func(_ int, s *goquery.Selection) {
		uids = append(uids, s.AttrOr("href", ""))
	})

	for next != "" {
		rr := h.get(t, next)
		require.Equal(t, http.StatusOK, rr.Code)
		frag := document(t, rr)
		frag.Find("li a").Each(func(_ int, s *goquery.Selection) {
			uids = append(uids, s.AttrOr("href", ""))
		})

		btn := frag.Find("#load-more")
		require.Equal(t, 1, btn.Length())
		if btn.AttrOr("hx-swap-oob", "") == "delete" {
			next = ""
			continue
		}
		assert.Equal(t, "true", btn.AttrOr("hx-swap-oob", ""))
		next = btn.AttrOr("hx-get", "")
	}

	assert.Equal(t, []string{
		"/post/post-05", "/post/post-04", "/post/post-03", "/post/post-02", "/post/post-01",
	}, uids, "pages append in order without gaps or repeats")
}

func TestLoadMore_ForeignCursor(t *testing.T) {
	h := newHarness(t, harnessOptions{}, seedPosts(1)...)

	for _, cursor := range []string{
		"",
		"https://evil.example/api/v2/documents/search?page=2",
		"http://169.254.169.254/latest/meta-data/",
	} {
		rr := h.get(t, "/posts/more?"+url.Values{"page": {cursor}}.Encode())
		assert.Equal(t, http.StatusBadRequest, rr.Code, "cursor %q", cursor)
	}
	assert.Zero(t, h.cms.Searches())
}

func TestLoadMore_FailureLeavesStateUnchanged(t *testing.T) {
	h := newHarness(t, harnessOptions{pageSize: 2}, seedPosts(3)...)

	next, ok := document(t, h.get(t, "/")).Find("button#load-more").Attr("hx-get")
	require.True(t, ok)

	h.cms.SetFailing(true)
	rr := h.get(t, next)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String(), "htmx swaps nothing on 204")

	h.cms.SetFailing(false)
	rr = h.get(t, next)
	assert.Equal(t, http.StatusOK, rr.Code, "the same cursor works once the repository recovers")
}

func TestAPIPosts(t *testing.T) {
	h := newHarness(t, harnessOptions{pageSize: 2}, seedPosts(3)...)

	rr := h.get(t, "/api/posts")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var first paginationJSON
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &first))
	require.Len(t, first.Results, 2)
	assert.Equal(t, "post-03", first.Results[0].UID)
	assert.Equal(t, "03 mar 2021", first.Results[0].FormattedDate)
	assert.Contains(t, rr.Body.String(), `"formatted_date":"03 mar 2021"`)
	require.NotNil(t, first.NextPage)

	rr = h.get(t, "/api/posts?"+url.Values{"page": {*first.NextPage}}.Encode())
	require.Equal(t, http.StatusOK, rr.Code)

	var last paginationJSON
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &last))
	require.Len(t, last.Results, 1)
	assert.Equal(t, "post-01", last.Results[0].UID)
	assert.Nil(t, last.NextPage)
	assert.Contains(t, rr.Body.String(), `"next_page":null`)
}

func TestAPIPosts_Errors(t *testing.T) {
	h := newHarness(t, harnessOptions{}, seedPosts(1)...)

	rr := h.get(t, "/api/posts?page="+url.QueryEscape("https://evil.example/search"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	h.cms.SetFailing(true)
	rr = h.get(t, "/api/posts")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "content repository unavailable")
}

func TestPrivateRepository_TokenStaysServerSide(t *testing.T) {
	const token = "SECRET-TOKEN"
	h := newHarness(t, harnessOptions{pageSize: 2, accessToken: token}, seedPosts(5)...)

	rr := h.get(t, "/")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), token)
	next, ok := document(t, rr).Find("button#load-more").Attr("hx-get")
	require.True(t, ok)

	pages := 0
	for next != "" {
		rr := h.get(t, next)
		require.Equal(t, http.StatusOK, rr.Code, "cursor is followed with the token added back")
		assert.NotContains(t, rr.Body.String(), token)
		pages++

		btn := document(t, rr).Find("#load-more")
		if btn.AttrOr("hx-swap-oob", "") == "delete" {
			break
		}
		next = btn.AttrOr("hx-get", "")
	}
	assert.Equal(t, 2, pages)

	rr = h.get(t, "/api/posts")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), token)

	var first paginationJSON
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &first))
	require.NotNil(t, first.NextPage)
	rr = h.get(t, "/api/posts?"+url.Values{"page": {*first.NextPage}}.Encode())
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), token)
}
