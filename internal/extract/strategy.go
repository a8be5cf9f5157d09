// Package extract turns listing detail pages from the supported classifieds
// sites into field values.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/flathunt/internal/types"
)

// SourceKind identifies which site a listing link belongs to.
type SourceKind int

const (
	SourceOLX SourceKind = iota + 1
	SourceOtodom
)

func (k SourceKind) String() string {
	switch k {
	case SourceOLX:
		return "olx"
	case SourceOtodom:
		return "otodom"
	default:
		return "unknown"
	}
}

// Strategy extracts listing fields from a parsed detail page of one site.
//
// Description, Utilities, Rooms and Area never fail: a missing node yields ""
// or the listing.Unknown sentinel. Title, District and Rent return an error
// wrapping types.ErrMissingField or types.ErrBadNumber.
type Strategy interface {
	Kind() SourceKind
	Description(doc *goquery.Document) string
	Rent(doc *goquery.Document) (int, error)
	Utilities(doc *goquery.Document) int
	Rooms(doc *goquery.Document) int
	Area(doc *goquery.Document) float64
	Title(doc *goquery.Document) (string, error)
	District(doc *goquery.Document) (string, error)
}

// StrategyFor returns the extraction strategy bound to a source kind.
func StrategyFor(kind SourceKind) Strategy {
	switch kind {
	case SourceOLX:
		return OLX{}
	case SourceOtodom:
		return Otodom{}
	default:
		return nil
	}
}

// Sources describes how listing links of each site are recognized.
type Sources struct {
	// OLXOrigin is prefixed to relative OLX links.
	OLXOrigin string
	// OLXPathPrefix marks a relative same-origin OLX listing link.
	OLXPathPrefix string
	// OtodomDomain marks an absolute Otodom listing link.
	OtodomDomain string
}

// Classify maps a listing href to its source and absolute URL.
// An href matching no source returns a *types.SourceError.
func (s Sources) Classify(href string) (SourceKind, string, error) {
	switch {
	case strings.HasPrefix(href, s.OLXPathPrefix):
		return SourceOLX, strings.TrimRight(s.OLXOrigin, "/") + href, nil
	case strings.Contains(href, s.OtodomDomain):
		return SourceOtodom, href, nil
	default:
		return 0, "", &types.SourceError{Href: href}
	}
}
