package resolver

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"EdgarPull/internal/domain/repository"
	"EdgarPull/internal/service/directory"
)

// strategy attempts one resolution technique. Strategies run in order and
// the first success wins.
type strategy interface {
	name() string
	attempt(ctx context.Context, q repository.ResolveQuery) (string, bool)
}

// cikLookup resolves through the directory's CIK index.
type cikLookup struct{ dir *directory.Directory }

func (s cikLookup) name() string { return "cik" }

func (s cikLookup) attempt(_ context.Context, q repository.ResolveQuery) (string, bool) {
	if q.CIK == "" {
		return "", false
	}
	return s.dir.ByCIK(q.CIK)
}

// nameLookup resolves through the directory's normalized name index,
// retrying with legal suffixes stripped.
type nameLookup struct{ dir *directory.Directory }

func (s nameLookup) name() string { return "name" }

func (s nameLookup) attempt(_ context.Context, q repository.ResolveQuery) (string, bool) {
	if q.CompanyName == "" {
		return "", false
	}
	return s.dir.ByName(q.CompanyName)
}

// aliasLookup consults the curated special-case table.
type aliasLookup struct{}

func (s aliasLookup) name() string { return "alias" }

func (s aliasLookup) attempt(_ context.Context, q repository.ResolveQuery) (string, bool) {
	if q.CompanyName == "" {
		return "", false
	}
	return lookupSubstring(companyAliases, directory.NormalizeName(q.CompanyName))
}

// synthesize derives a plausible symbol from the company name itself.
// Last resort, low confidence: initials for multi-word names, truncation
// otherwise, with a domain suffix dropped first.
type synthesize struct{}

func (s synthesize) name() string { return "synthesized" }

func (s synthesize) attempt(_ context.Context, q repository.ResolveQuery) (string, bool) {
	base := directory.StripLegalSuffixes(directory.NormalizeName(q.CompanyName))
	base = strings.TrimSuffix(base, " com")
	base = strings.TrimSuffix(base, " net")
	fields := strings.Fields(base)
	if len(fields) == 0 {
		return "", false
	}
	if len(fields) == 1 {
		word := fields[0]
		if len(word) > 4 {
			word = word[:4]
		}
		if !alphaOnly(word) {
			return "", false
		}
		return strings.ToUpper(word), true
	}
	var b strings.Builder
	for i, f := range fields {
		if i == 4 {
			break
		}
		r := rune(f[0])
		if !unicode.IsLetter(r) {
			return "", false
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String(), true
}

func alphaOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return len(s) > 0
}

// issuerPattern pulls the "Issuer: <company>" field some Form 4 documents
// carry in their header block.
var issuerPattern = regexp.MustCompile(`(?i)issuer[:\s]+([A-Z][A-Za-z0-9 .,&'\-]{2,60})`)

// issuerField extracts an issuer company name from filing text, then
// resolves it like a company.
type issuerField struct {
	dir *directory.Directory
}

func (s issuerField) name() string { return "issuer-field" }

func (s issuerField) attempt(_ context.Context, q repository.ResolveQuery) (string, bool) {
	if q.FilingText == "" {
		return "", false
	}
	m := issuerPattern.FindStringSubmatch(q.FilingText)
	if m == nil {
		return "", false
	}
	company := strings.TrimSpace(m[1])
	if t, ok := s.dir.ByName(company); ok {
		return t, true
	}
	return lookupSubstring(companyAliases, directory.NormalizeName(company))
}

// personOverride consults the curated executive table.
type personOverride struct{}

func (s personOverride) name() string { return "person-override" }

func (s personOverride) attempt(_ context.Context, q repository.ResolveQuery) (string, bool) {
	if q.PersonName == "" {
		return "", false
	}
	return lookupSubstring(personOverrides, directory.NormalizeName(q.PersonName))
}
