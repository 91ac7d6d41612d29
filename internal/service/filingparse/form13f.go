package filingparse

import (
	"bytes"
	"encoding/xml"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Form13FTitle is the decomposed feed title "13F-(HR|NT) - <name> (<cik>)".
type Form13FTitle struct {
	Variant string // "HR" or "NT"
	Name    string
	CIK     string
}

var form13fTitlePattern = regexp.MustCompile(`^13F-(HR|NT)(?:/A)?\s*-\s*(.+?)\s*\((\d{6,10})\)`)

// ParseForm13FTitle decomposes a Form 13F feed title.
func ParseForm13FTitle(title string) (Form13FTitle, bool) {
	m := form13fTitlePattern.FindStringSubmatch(strings.TrimSpace(title))
	if m == nil {
		return Form13FTitle{}, false
	}
	return Form13FTitle{Variant: m[1], Name: strings.TrimSpace(m[2]), CIK: m[3]}, true
}

// RawHolding is one row of a 13F security table before model construction.
// Value carries the upstream unit (thousands of dollars), unscaled.
type RawHolding struct {
	NameOfIssuer   string
	CUSIP          string
	ValueThousands int64
	Shares         int64
}

// infoTable matches the structured 13F information-table XML. Field tags use
// local names only to stay namespace-agnostic across vintages.
type infoTableDoc struct {
	Entries []infoTableEntry `xml:"infoTable"`
}

type infoTableEntry struct {
	NameOfIssuer string `xml:"nameOfIssuer"`
	CUSIP        string `xml:"cusip"`
	Value        string `xml:"value"`
	Shares       struct {
		Amount string `xml:"sshPrnamt"`
	} `xml:"shrsOrPrnAmt"`
}

// ParseInfoTable parses the structured information-table format. Returns nil
// when the document does not contain one.
func ParseInfoTable(data []byte) []RawHolding {
	var doc infoTableDoc
	if err := xml.Unmarshal(data, &doc); err != nil || len(doc.Entries) == 0 {
		// Some filings wrap the table in an outer document; scan for the
		// element rather than requiring it at the root.
		entries := scanInfoTables(data)
		if len(entries) == 0 {
			return nil
		}
		doc.Entries = entries
	}
	holdings := make([]RawHolding, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		h := RawHolding{
			NameOfIssuer:   strings.TrimSpace(e.NameOfIssuer),
			CUSIP:          strings.TrimSpace(e.CUSIP),
			ValueThousands: parseAmount(e.Value),
			Shares:         parseAmount(e.Shares.Amount),
		}
		if h.NameOfIssuer == "" && h.CUSIP == "" {
			continue
		}
		holdings = append(holdings, h)
	}
	return holdings
}

func scanInfoTables(data []byte) []infoTableEntry {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var entries []infoTableEntry
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "infoTable" {
			var e infoTableEntry
			if err := dec.DecodeElement(&e, &se); err == nil {
				entries = append(entries, e)
			}
		}
	}
	return entries
}

// ParseHoldingsHTML scrapes a free-text HTML filing page for a security
// table: the first table whose header row mentions cusip or issuer plus a
// shares/value column, with columns mapped by header text.
func ParseHoldingsHTML(data []byte) []RawHolding {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	for _, table := range findNodes(root, "table") {
		rows := findNodes(table, "tr")
		if len(rows) < 2 {
			continue
		}
		cols := headerColumns(rows[0])
		if cols.issuer < 0 && cols.cusip < 0 {
			continue
		}
		if cols.shares < 0 && cols.value < 0 {
			continue
		}
		var holdings []RawHolding
		for _, row := range rows[1:] {
			cells := cellTexts(row)
			h := RawHolding{
				NameOfIssuer:   cellAt(cells, cols.issuer),
				CUSIP:          cellAt(cells, cols.cusip),
				ValueThousands: parseAmount(cellAt(cells, cols.value)),
				Shares:         parseAmount(cellAt(cells, cols.shares)),
			}
			if h.NameOfIssuer == "" && h.CUSIP == "" {
				continue
			}
			if h.Shares == 0 && h.ValueThousands == 0 {
				continue
			}
			holdings = append(holdings, h)
		}
		if len(holdings) > 0 {
			return holdings
		}
	}
	return nil
}

type columnMap struct {
	issuer, cusip, shares, value int
}

func headerColumns(row *html.Node) columnMap {
	cols := columnMap{issuer: -1, cusip: -1, shares: -1, value: -1}
	for i, cell := range cellTexts(row) {
		h := strings.ToLower(cell)
		switch {
		case cols.issuer < 0 && (strings.Contains(h, "issuer") || strings.Contains(h, "name of")):
			cols.issuer = i
		case cols.cusip < 0 && strings.Contains(h, "cusip"):
			cols.cusip = i
		case cols.shares < 0 && (strings.Contains(h, "shares") || strings.Contains(h, "prn amt")):
			cols.shares = i
		case cols.value < 0 && strings.Contains(h, "value"):
			cols.value = i
		}
	}
	return cols
}

func findNodes(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == tag {
			out = append(out, node)
			if tag == "table" {
				return // no nested tables
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func cellTexts(row *html.Node) []string {
	var cells []string
	for _, tag := range []string{"th", "td"} {
		for _, cell := range findNodes(row, tag) {
			cells = append(cells, strings.TrimSpace(nodeText(cell)))
		}
		if len(cells) > 0 {
			break
		}
	}
	return cells
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
			b.WriteString(" ")
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func cellAt(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return cells[i]
}

var nonNumeric = regexp.MustCompile(`[^\d]`)

// parseAmount strips non-numeric characters and parses the remainder.
func parseAmount(s string) int64 {
	digits := nonNumeric.ReplaceAllString(s, "")
	if digits == "" {
		return 0
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
