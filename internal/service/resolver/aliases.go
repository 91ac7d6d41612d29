package resolver

import "strings"

// companyAliases handles issuers whose feed names never match the bulk
// company list (renames, holding structures, feed quirks). Keys are
// normalized substrings.
var companyAliases = map[string]string{
	"facebook":            "META",
	"google":              "GOOGL",
	"alphabet":            "GOOGL",
	"twitter":             "X",
	"square inc":          "SQ",
	"block inc":           "SQ",
	"berkshire hathaway":  "BRK.B",
	"jpmorgan":            "JPM",
	"j p morgan":          "JPM",
	"exxon":               "XOM",
	"coca cola":           "KO",
	"procter & gamble":    "PG",
	"procter gamble":      "PG",
	"walmart":             "WMT",
	"wal mart":            "WMT",
	"at&t":                "T",
	"int l business mach": "IBM",
}

// personOverrides maps well-known executives that file under their own CIK
// with no issuer reference the patterns can find.
var personOverrides = map[string]string{
	"musk elon":        "TSLA",
	"elon musk":        "TSLA",
	"cook timothy":     "AAPL",
	"timothy d cook":   "AAPL",
	"nadella satya":    "MSFT",
	"satya nadella":    "MSFT",
	"huang jen hsun":   "NVDA",
	"jen hsun huang":   "NVDA",
	"zuckerberg mark":  "META",
	"mark zuckerberg":  "META",
	"dimon james":      "JPM",
	"jamie dimon":      "JPM",
	"buffett warren":   "BRK.B",
	"warren e buffett": "BRK.B",
	"pichai sundar":    "GOOGL",
	"sundar pichai":    "GOOGL",
	"jassy andrew":     "AMZN",
	"andrew r jassy":   "AMZN",
}

// institutionTickers maps large 13F filers to their own listed symbol via
// name substring; many institutional managers are not separately listed, so
// this is tried before the generic chain.
var institutionTickers = map[string]string{
	"berkshire hathaway": "BRK.B",
	"blackrock":          "BLK",
	"vanguard":           "-",
	"state street":       "STT",
	"fidelity":           "-",
	"fmr llc":            "-",
	"jpmorgan":           "JPM",
	"morgan stanley":     "MS",
	"goldman sachs":      "GS",
	"bank of america":    "BAC",
	"wells fargo":        "WFC",
	"citadel":            "-",
	"bridgewater":        "-",
	"renaissance technologies": "-",
	"two sigma":          "-",
	"t rowe price":       "TROW",
	"invesco":            "IVZ",
	"northern trust":     "NTRS",
	"bank of new york":   "BK",
	"ubs":                "UBS",
	"charles schwab":     "SCHW",
}

func lookupSubstring(table map[string]string, normalized string) (string, bool) {
	for frag, ticker := range table {
		if strings.Contains(normalized, frag) {
			return ticker, true
		}
	}
	return "", false
}
