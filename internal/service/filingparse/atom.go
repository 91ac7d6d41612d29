package filingparse

import (
	"encoding/xml"
	"errors"
	"regexp"
	"strings"
	"time"

	"EdgarPull/internal/domain/models"
	"EdgarPull/pkg/util"
)

// ErrMalformedFeed signals that both the strict and the lenient parser gave
// up on a feed document. The caller treats the window as empty rather than
// aborting the batch.
var ErrMalformedFeed = errors.New("malformed feed document")

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string     `xml:"title"`
	Summary   string     `xml:"summary"`
	Updated   string     `xml:"updated"`
	Published string     `xml:"published"`
	Links     []atomLink `xml:"link"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

// ParseFeed converts an upstream Atom document into feed entries. Malformed
// XML falls back to a lenient regex scan before giving up.
func ParseFeed(data []byte) ([]models.FeedEntry, error) {
	var feed atomFeed
	if err := xml.Unmarshal(data, &feed); err == nil && len(feed.Entries) > 0 {
		entries := make([]models.FeedEntry, 0, len(feed.Entries))
		for _, e := range feed.Entries {
			entries = append(entries, toEntry(e))
		}
		return entries, nil
	}
	return parseFeedLenient(data)
}

func toEntry(e atomEntry) models.FeedEntry {
	var link string
	for _, l := range e.Links {
		if l.Rel == "" || l.Rel == "alternate" {
			link = l.Href
			break
		}
	}
	if link == "" && len(e.Links) > 0 {
		link = e.Links[0].Href
	}
	return models.FeedEntry{
		Title:     strings.TrimSpace(e.Title),
		Summary:   strings.TrimSpace(e.Summary),
		Link:      link,
		Published: util.ParseTimeDefault(e.Published, time.Time{}),
		Updated:   util.ParseTimeDefault(e.Updated, time.Time{}),
	}
}

var (
	entryBlock   = regexp.MustCompile(`(?s)<entry[^>]*>(.*?)</entry>`)
	titleField   = regexp.MustCompile(`(?s)<title[^>]*>(.*?)</title>`)
	summaryField = regexp.MustCompile(`(?s)<summary[^>]*>(.*?)</summary>`)
	updatedField = regexp.MustCompile(`<updated>([^<]+)</updated>`)
	linkField    = regexp.MustCompile(`<link[^>]*href="([^"]+)"`)
)

// parseFeedLenient pulls entries out of feed documents the XML decoder
// rejects (unescaped ampersands, stray tags, truncation).
func parseFeedLenient(data []byte) ([]models.FeedEntry, error) {
	blocks := entryBlock.FindAllStringSubmatch(string(data), -1)
	if len(blocks) == 0 {
		return nil, ErrMalformedFeed
	}
	entries := make([]models.FeedEntry, 0, len(blocks))
	for _, b := range blocks {
		body := b[1]
		e := models.FeedEntry{}
		if m := titleField.FindStringSubmatch(body); m != nil {
			e.Title = strings.TrimSpace(unescape(m[1]))
		}
		if m := summaryField.FindStringSubmatch(body); m != nil {
			e.Summary = strings.TrimSpace(unescape(m[1]))
		}
		if m := updatedField.FindStringSubmatch(body); m != nil {
			e.Updated = util.ParseTimeDefault(m[1], time.Time{})
		}
		if m := linkField.FindStringSubmatch(body); m != nil {
			e.Link = unescape(m[1])
		}
		if e.Title == "" && e.Link == "" {
			continue
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil, ErrMalformedFeed
	}
	return entries, nil
}

var unescaper = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
)

func unescape(s string) string { return unescaper.Replace(s) }
