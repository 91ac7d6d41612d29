package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"EdgarPull/internal/domain/repository"
	"EdgarPull/internal/service/directory"
	"EdgarPull/internal/service/feedclient"
)

// submissionsLookup fetches the per-filer submissions document for a person
// CIK; issuer tickers sometimes ride along in it.
type submissionsLookup struct {
	client *feedclient.Client
	url    string // printf template with one %s for the padded CIK
}

func (s submissionsLookup) name() string { return "submissions" }

type submissionsDoc struct {
	Name    string   `json:"name"`
	Tickers []string `json:"tickers"`
}

func (s submissionsLookup) attempt(ctx context.Context, q repository.ResolveQuery) (string, bool) {
	if s.client == nil || s.url == "" || q.CIK == "" {
		return "", false
	}
	url := fmt.Sprintf(s.url, directory.PadCIK(q.CIK))
	resp, err := s.client.Do(ctx, feedclient.Request{URL: url, Form: "resolve"})
	if err != nil {
		return "", false
	}
	var doc submissionsDoc
	if err := json.Unmarshal(resp.Body, &doc); err != nil {
		return "", false
	}
	for _, t := range doc.Tickers {
		if t != "" {
			return strings.ToUpper(t), true
		}
	}
	return "", false
}

// fullTextSearch queries the upstream full-text search endpoint for the
// person's name and harvests a "(TICKER)" token from the hit display names.
type fullTextSearch struct {
	client *feedclient.Client
	url    string
}

func (s fullTextSearch) name() string { return "full-text" }

type searchResult struct {
	Hits struct {
		Hits []struct {
			Source struct {
				DisplayNames []string `json:"display_names"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

var displayTicker = regexp.MustCompile(`\(([A-Z]{1,5}(?:\.[A-Z])?)\)`)

func (s fullTextSearch) attempt(ctx context.Context, q repository.ResolveQuery) (string, bool) {
	if s.client == nil || s.url == "" || q.PersonName == "" {
		return "", false
	}
	resp, err := s.client.Do(ctx, feedclient.Request{
		URL:   s.url,
		Query: map[string][]string{"q": {fmt.Sprintf("%q", q.PersonName)}, "forms": {"4"}},
		Form:  "resolve",
	})
	if err != nil {
		return "", false
	}
	var res searchResult
	if err := json.Unmarshal(resp.Body, &res); err != nil {
		return "", false
	}
	for _, hit := range res.Hits.Hits {
		for _, dn := range hit.Source.DisplayNames {
			if m := displayTicker.FindStringSubmatch(dn); m != nil && m[1] != "CIK" {
				return m[1], true
			}
		}
	}
	return "", false
}
