// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package prismictest provides an in-process fake of a Prismic repository
// for tests: an API root with a master ref and a search endpoint that
// understands the predicates, paging and ordering the site uses.
package prismictest

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"spacetraveling/internal/prismic"
)

// MasterRef is the ref advertised by the fake API root.
const MasterRef = "master-ref"

var atPredicate = regexp.MustCompile(`at\(([^,]+),"((?:[^"\\]|\\.)*)"\)`)

// Server is a fake repository.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	docs     []prismic.Document
	searches atomic.Int32
	failing  atomic.Bool
	token    string         // when set, requests must carry it as access_token
	gate     chan struct{} // when non-nil, searches block until it is closed
}

// New starts a fake repository holding docs. It is closed on test cleanup.
func New(t testing.TB, docs ...prismic.Document) *Server {
	t.Helper()
	s := &Server{docs: docs}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2", s.root)
	mux.HandleFunc("/api/v2/documents/search", s.search)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// Endpoint returns the repository API endpoint.
func (s *Server) Endpoint() string {
	return s.URL + "/api/v2"
}

// SetDocuments replaces the repository contents.
func (s *Server) SetDocuments(docs ...prismic.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = docs
}

// RequireToken makes the repository private: requests without token as
// access_token are answered 401.
func (s *Server) RequireToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// authorized reports whether r carries the required token, answering 401
// when it does not.
func (s *Server) authorized(w http.ResponseWriter, r *http.Request) bool {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token != "" && r.URL.Query().Get("access_token") != token {
		http.Error(w, `{"message":"invalid access token"}`, http.StatusUnauthorized)
		return false
	}
	return true
}

// SetFailing makes every search answer 500 while true.
func (s *Server) SetFailing(fail bool) {
	s.failing.Store(fail)
}

// Hold makes searches block until the returned release func is called.
func (s *Server) Hold() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.gate = gate
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.gate = nil
			s.mu.Unlock()
			close(gate)
		})
	}
}

// Searches returns how many search requests were served.
func (s *Server) Searches() int {
	return int(s.searches.Load())
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"refs":[{"id":"master","ref":%q,"label":"Master","isMasterRef":true}]}`, MasterRef)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	s.searches.Add(1)

	s.mu.Lock()
	gate := s.gate
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	if s.failing.Load() {
		http.Error(w, `{"message":"unavailable"}`, http.StatusInternalServerError)
		return
	}

	if !s.authorized(w, r) {
		return
	}

	q := r.URL.Query()
	if q.Get("ref") != MasterRef {
		http.Error(w, `{"message":"invalid ref"}`, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	matched := make([]prismic.Document, 0, len(s.docs))
	for _, d := range s.docs {
		if matches(d, q.Get("q")) {
			matched = append(matched, d)
		}
	}
	s.mu.Unlock()

	if strings.Contains(q.Get("orderings"), "document.first_publication_date desc") {
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].FirstPublicationDate > matched[j].FirstPublicationDate
		})
	}

	pageSize := atoiOr(q.Get("pageSize"), 20)
	page := atoiOr(q.Get("page"), 1)
	total := len(matched)
	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))

	from := (page - 1) * pageSize
	if from > total {
		from = total
	}
	to := from + pageSize
	if to > total {
		to = total
	}

	resp := prismic.Response{
		Page:             page,
		ResultsPerPage:   pageSize,
		ResultsSize:      to - from,
		TotalResultsSize: total,
		TotalPages:       totalPages,
		Results:          matched[from:to],
	}
	if page < totalPages {
		next := *r.URL
		next.Scheme = "http"
		next.Host = r.Host
		nq := next.Query()
		nq.Set("page", strconv.Itoa(page+1))
		next.RawQuery = nq.Encode()
		u := next.String()
		resp.NextPage = &u
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// matches applies every at() predicate in q to d.
func matches(d prismic.Document, q string) bool {
	for _, m := range atPredicate.FindAllStringSubmatch(q, -1) {
		path, value := m[1], m[2]
		switch {
		case path == "document.type":
			if d.Type != value {
				return false
			}
		case strings.HasPrefix(path, "my.") && strings.HasSuffix(path, ".uid"):
			if d.Type != strings.TrimSuffix(strings.TrimPrefix(path, "my."), ".uid") || d.UID != value {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// Section is one heading and its paragraphs for Post.
type Section struct {
	Heading    string
	Paragraphs []string
}

// Post builds a "posts" document. date uses the repository format, e.g.
// 2021-03-25T19:25:28+0000.
func Post(uid, date, title, subtitle, author string, sections ...Section) prismic.Document {
	type block struct {
		Type  string `json:"type"`
		Text  string `json:"text"`
		Spans []any  `json:"spans"`
	}
	type content struct {
		Heading string  `json:"heading"`
		Body    []block `json:"body"`
	}
	data := struct {
		Title    string            `json:"title"`
		Subtitle string            `json:"subtitle"`
		Author   string            `json:"author"`
		Banner   map[string]string `json:"banner"`
		Content  []content         `json:"content"`
	}{
		Title:    title,
		Subtitle: subtitle,
		Author:   author,
		Banner:   map[string]string{"url": "https://images.prismic.io/spacetraveling/" + uid + ".png"},
		Content:  []content{},
	}
	for _, sec := range sections {
		c := content{Heading: sec.Heading, Body: []block{}}
		for _, p := range sec.Paragraphs {
			c.Body = append(c.Body, block{Type: "paragraph", Text: p, Spans: []any{}})
		}
		data.Content = append(data.Content, c)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}
	return prismic.Document{
		ID:                   "id-" + uid,
		UID:                  uid,
		Type:                 "posts",
		Lang:                 "pt-br",
		FirstPublicationDate: date,
		LastPublicationDate:  date,
		Data:                 raw,
	}
}
