package filingparse

import (
	"errors"
	"testing"
)

const wellFormedFeed = `<?xml version="1.0" encoding="ISO-8859-1" ?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Latest Filings</title>
  <entry>
    <title>4 - Apple Inc. (0000320193) (Issuer)</title>
    <link rel="alternate" type="text/html" href="https://example.test/filing/1"/>
    <summary type="html">Filed: 2024-03-05 AccNo: 0001-24-000001</summary>
    <updated>2024-03-05T16:31:02-05:00</updated>
  </entry>
  <entry>
    <title>4 - Cook Timothy D (0001214156) (Reporting)</title>
    <link rel="alternate" type="text/html" href="https://example.test/filing/2"/>
    <summary type="html">Filed: 2024-03-05</summary>
    <updated>2024-03-05T16:31:02-05:00</updated>
  </entry>
</feed>`

// Unescaped ampersand makes the strict decoder fail.
const malformedFeed = `<?xml version="1.0"?>
<feed>
  <entry>
    <title>4 - Johnson & Johnson (0000200406) (Issuer)</title>
    <link rel="alternate" href="https://example.test/filing/3"/>
    <summary>Filed: 2024-03-06</summary>
    <updated>2024-03-06T09:00:00-05:00</updated>
  </entry>
</feed>`

func TestParseFeedWellFormed(t *testing.T) {
	entries, err := ParseFeed([]byte(wellFormedFeed))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Title != "4 - Apple Inc. (0000320193) (Issuer)" {
		t.Fatalf("unexpected title %q", entries[0].Title)
	}
	if entries[0].Link != "https://example.test/filing/1" {
		t.Fatalf("unexpected link %q", entries[0].Link)
	}
	if entries[0].Updated.IsZero() {
		t.Fatalf("updated not parsed")
	}
}

func TestParseFeedLenientFallback(t *testing.T) {
	entries, err := ParseFeed([]byte(malformedFeed))
	if err != nil {
		t.Fatalf("lenient fallback should have recovered: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Title != "4 - Johnson & Johnson (0000200406) (Issuer)" {
		t.Fatalf("unexpected title %q", entries[0].Title)
	}
}

func TestParseFeedHopeless(t *testing.T) {
	_, err := ParseFeed([]byte("not xml at all"))
	if !errors.Is(err, ErrMalformedFeed) {
		t.Fatalf("expected ErrMalformedFeed, got %v", err)
	}
}
