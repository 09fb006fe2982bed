package jira

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Jira Cloud enhanced search: POST /rest/api/3/search/jql, continuation tokens.
type searchJQLRequest struct {
	JQL           string   `json:"jql"`
	Fields        []string `json:"fields,omitempty"`
	MaxResults    int      `json:"maxResults"`
	NextPageToken string   `json:"nextPageToken,omitempty"`
}

type searchJQLResponse struct {
	Issues        []wireIssue `json:"issues"`
	NextPageToken string      `json:"nextPageToken"`
	IsLast        bool        `json:"isLast"`
}

// Server/Data Center search: GET /rest/api/2/search, offsets.
type searchResponse struct {
	StartAt    int         `json:"startAt"`
	MaxResults int         `json:"maxResults"`
	Total      *int        `json:"total"`
	Issues     []wireIssue `json:"issues"`
}

// SearchToken fetches one token-paged page. An empty token starts the search.
func (c *Client) SearchToken(ctx context.Context, q QuerySpec, token string) (PageResult, error) {
	const op = "search/jql"
	body := searchJQLRequest{
		JQL:           q.JQL,
		Fields:        q.Fields,
		MaxResults:    q.PageSize,
		NextPageToken: token,
	}
	var resp searchJQLResponse
	if err := c.doJSON(ctx, op, http.MethodPost, c.apiURL("/rest/api/3/search/jql", nil), body, &resp); err != nil {
		return PageResult{}, err
	}
	recs, err := toRecords(op, resp.Issues)
	if err != nil {
		return PageResult{}, err
	}
	return PageResult{
		Records:   recs,
		NextToken: resp.NextPageToken,
		Last:      resp.IsLast || resp.NextPageToken == "",
		Total:     -1,
		Requested: q.PageSize,
		Effective: q.PageSize,
	}, nil
}

// SearchOffset fetches one offset-paged page starting at startAt.
func (c *Client) SearchOffset(ctx context.Context, q QuerySpec, startAt int) (PageResult, error) {
	const op = "search"
	v := url.Values{}
	v.Set("jql", q.JQL)
	v.Set("startAt", strconv.Itoa(startAt))
	v.Set("maxResults", strconv.Itoa(q.PageSize))
	if len(q.Fields) > 0 {
		v.Set("fields", strings.Join(q.Fields, ","))
	}
	var resp searchResponse
	if err := c.doJSON(ctx, op, http.MethodGet, c.apiURL("/rest/api/2/search", v), nil, &resp); err != nil {
		return PageResult{}, err
	}
	recs, err := toRecords(op, resp.Issues)
	if err != nil {
		return PageResult{}, err
	}

	// Jira clamps maxResults server-side and echoes the applied value.
	effective := q.PageSize
	if resp.MaxResults > 0 && resp.MaxResults < effective {
		effective = resp.MaxResults
	}
	total := -1
	if resp.Total != nil {
		total = *resp.Total
	}
	return PageResult{
		Records:   recs,
		Last:      len(recs) < effective,
		Total:     total,
		Requested: q.PageSize,
		Effective: effective,
	}, nil
}
