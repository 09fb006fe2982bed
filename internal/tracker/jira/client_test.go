package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jiradigest/internal/apperr"
	"jiradigest/internal/record"
	logx "jiradigest/pkg/logx"
)

func fakeIssues(n int) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = map[string]any{
			"id":  strconv.Itoa(10000 + i),
			"key": fmt.Sprintf("OPS-%d", i+1),
			"fields": map[string]any{
				"summary": fmt.Sprintf("issue %d", i+1),
				"status":  map[string]any{"name": "To Do"},
			},
		}
	}
	return out
}

func newTestClient(t *testing.T, srv *httptest.Server, ver string) *Client {
	t.Helper()
	return NewClient(Config{
		BaseURL:    srv.URL + "/",
		Email:      "bot@example.com",
		APIToken:   "secret",
		APIVersion: ver,
		HTTPClient: srv.Client(),
	}, logx.Nop())
}

func keysOf(recs []record.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Key
	}
	return out
}

// tokenServer serves issues in pages of at most pageCap using numeric tokens.
func tokenServer(t *testing.T, issues []map[string]any, pageCap int, calls *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if r.Method != http.MethodPost || r.URL.Path != "/rest/api/3/search/jql" {
			http.NotFound(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "bot@example.com" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req searchJQLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		start := 0
		if req.NextPageToken != "" {
			start, _ = strconv.Atoi(req.NextPageToken)
		}
		size := min(req.MaxResults, pageCap)
		end := min(start+size, len(issues))
		resp := map[string]any{"issues": issues[start:end], "isLast": end >= len(issues)}
		if end < len(issues) {
			resp["nextPageToken"] = strconv.Itoa(end)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

// offsetServer serves issues via startAt/maxResults, clamping to pageCap.
func offsetServer(t *testing.T, issues []map[string]any, pageCap int, calls *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if r.Method != http.MethodGet || r.URL.Path != "/rest/api/2/search" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		start, _ := strconv.Atoi(q.Get("startAt"))
		size, _ := strconv.Atoi(q.Get("maxResults"))
		size = min(size, pageCap)
		from := min(start, len(issues))
		end := min(from+size, len(issues))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"startAt":    start,
			"maxResults": size,
			"total":      len(issues),
			"issues":     issues[from:end],
		})
	}))
}

func TestAPIVersionFallsBackToV3(t *testing.T) {
	for in, want := range map[string]string{"": APIv3, " 2 ": APIv2, "3": APIv3, "latest": APIv3} {
		c := NewClient(Config{BaseURL: "https://jira.example", APIVersion: in}, logx.Nop())
		assert.Equal(t, want, c.APIVersion(), "input %q", in)
	}
}

func TestFetchAllTokenPaging(t *testing.T) {
	for _, tc := range []struct{ n, page int }{{0, 10}, {1, 10}, {10, 10}, {23, 10}, {250, 100}} {
		t.Run(fmt.Sprintf("n=%d/p=%d", tc.n, tc.page), func(t *testing.T) {
			var calls int32
			srv := tokenServer(t, fakeIssues(tc.n), 1000, &calls)
			defer srv.Close()

			recs, err := newTestClient(t, srv, APIv3).FetchAll(context.Background(), QuerySpec{JQL: "project = OPS", PageSize: tc.page})
			require.NoError(t, err)
			require.Len(t, recs, tc.n)
			wantCalls := max(1, (tc.n+tc.page-1)/tc.page)
			assert.Equal(t, int32(wantCalls), atomic.LoadInt32(&calls))
			if tc.n > 0 {
				assert.Equal(t, "OPS-1", recs[0].Key)
				assert.Equal(t, fmt.Sprintf("OPS-%d", tc.n), recs[tc.n-1].Key)
			}
		})
	}
}

func TestFetchAllOffsetPaging(t *testing.T) {
	for _, tc := range []struct{ n, page int }{{0, 10}, {9, 10}, {10, 10}, {11, 10}, {205, 50}} {
		t.Run(fmt.Sprintf("n=%d/p=%d", tc.n, tc.page), func(t *testing.T) {
			var calls int32
			srv := offsetServer(t, fakeIssues(tc.n), 1000, &calls)
			defer srv.Close()

			recs, err := newTestClient(t, srv, APIv2).FetchAll(context.Background(), QuerySpec{JQL: "project = OPS", PageSize: tc.page})
			require.NoError(t, err)
			require.Len(t, recs, tc.n)
			// an exact multiple needs one extra empty page to see the end
			assert.Equal(t, int32(tc.n/tc.page+1), atomic.LoadInt32(&calls))
		})
	}
}

func TestFetchAllOffsetPagingServerClamp(t *testing.T) {
	var calls int32
	srv := offsetServer(t, fakeIssues(120), 50, &calls)
	defer srv.Close()

	// Asking for 100 while the server applies 50 must not stop after page one.
	recs, err := newTestClient(t, srv, APIv2).FetchAll(context.Background(), QuerySpec{JQL: "x", PageSize: 100})
	require.NoError(t, err)
	require.Len(t, recs, 120)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchAllDeduplicatesByID(t *testing.T) {
	issues := fakeIssues(5)
	page2 := []map[string]any{issues[2], issues[3], issues[4]}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req searchJQLRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.NextPageToken == "" {
			_ = json.NewEncoder(w).Encode(map[string]any{"issues": issues[:3], "nextPageToken": "p2"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"issues": page2, "isLast": true})
	}))
	defer srv.Close()

	recs, err := newTestClient(t, srv, APIv3).FetchAll(context.Background(), QuerySpec{JQL: "x", PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"OPS-1", "OPS-2", "OPS-3", "OPS-4", "OPS-5"}, keysOf(recs))
}

func TestFetchAllRepeatedTokenIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"issues": fakeIssues(1), "nextPageToken": "same"})
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, APIv3).FetchAll(context.Background(), QuerySpec{JQL: "x"})
	var me *apperr.MalformedResponseError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, apperr.ExitFetch, apperr.ExitCode(err))
}

func TestFetchAllTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errorMessages":["Error in the JQL Query"]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, APIv3).FetchAll(context.Background(), QuerySpec{JQL: "bad ="})
	var te *apperr.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusBadRequest, te.StatusCode)
	assert.Contains(t, te.Body, "Error in the JQL Query")
	assert.Equal(t, apperr.ExitFetch, apperr.ExitCode(err))
}

func TestFetchAllNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := newTestClient(t, srv, APIv3)
	srv.Close()

	_, err := c.FetchAll(context.Background(), QuerySpec{JQL: "x"})
	var te *apperr.TransportError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, te.StatusCode)
}

func TestFetchAllMalformedBody(t *testing.T) {
	for name, body := range map[string]string{
		"not json":   `<html>oops</html>`,
		"missing id": `{"issues":[{"key":"OPS-1","fields":{}}],"isLast":true}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv, APIv3).FetchAll(context.Background(), QuerySpec{JQL: "x"})
			var me *apperr.MalformedResponseError
			require.ErrorAs(t, err, &me)
		})
	}
}

func TestPATWinsOverBasicAuth(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"issues":[],"isLast":true}`))
	}))
	defer srv.Close()

	c := NewClient(Config{
		BaseURL: srv.URL, PAT: "pat-1", Email: "e", APIToken: "t", HTTPClient: srv.Client(),
	}, logx.Nop())
	_, err := c.FetchAll(context.Background(), QuerySpec{JQL: "x"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer pat-1", got)
}

func TestSearchOffsetSendsFields(t *testing.T) {
	var q string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"startAt":0,"maxResults":5,"issues":[]}`))
	}))
	defer srv.Close()

	p, err := newTestClient(t, srv, APIv2).SearchOffset(context.Background(),
		QuerySpec{JQL: "a = b", Fields: []string{"summary", "status"}, PageSize: 5}, 0)
	require.NoError(t, err)
	assert.True(t, p.Last)
	assert.Equal(t, -1, p.Total)
	assert.True(t, strings.Contains(q, "fields=summary%2Cstatus"), q)
}

func TestQuerySpecNormalize(t *testing.T) {
	q := QuerySpec{JQL: "  project = X ", Fields: []string{"key", "Summary", "summary", " status ", "", "ID"}}.Normalize()
	assert.Equal(t, "project = X", q.JQL)
	assert.Equal(t, []string{"Summary", "status"}, q.Fields)
	assert.Equal(t, DefaultPageSize, q.PageSize)
}

func TestFetchAllContextCanceled(t *testing.T) {
	var calls int32
	srv := tokenServer(t, fakeIssues(5), 1000, &calls)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClient(t, srv, APIv3).FetchAll(ctx, QuerySpec{JQL: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
