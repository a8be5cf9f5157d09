package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/IshaanNene/flathunt/internal/listing"
	"github.com/IshaanNene/flathunt/internal/types"
)

// Otodom page markers.
const (
	otodomDescriptionXPath = `//div[@data-cy='adPageAdDescription']`
	otodomPriceXPath       = `//strong[@data-cy='adPageHeaderPrice']`
	otodomTitleXPath       = `//div[@data-cy='adPageAdTitle']`
	otodomBreadcrumbsXPath = `//div[@data-cy='ad.breadcrumbs']`
	otodomRegionXPath      = `//div[@role='region']`

	otodomUtilitiesLabel = "Czynsz"
	otodomRoomsLabel     = "Liczba pokoi"
	otodomAreaLabel      = "Powierzchnia"
	otodomAskForPrice    = "Zapytaj"

	// The district is the fifth child of the breadcrumbs container.
	otodomDistrictIndex = 4
)

// Otodom extracts fields from otodom.pl listing pages using XPath.
type Otodom struct{}

func (Otodom) Kind() SourceKind { return SourceOtodom }

func (Otodom) Description(doc *goquery.Document) string {
	box := queryOne(doc, otodomDescriptionXPath)
	if box == nil {
		return ""
	}
	return nodeChildrenText(box)
}

func (Otodom) Rent(doc *goquery.Document) (int, error) {
	box := queryOne(doc, otodomPriceXPath)
	if box == nil || box.FirstChild == nil {
		return 0, fmt.Errorf("%w: %s", types.ErrMissingField, otodomPriceXPath)
	}
	return parseSuffixed(htmlquery.InnerText(box.FirstChild))
}

func (Otodom) Utilities(doc *goquery.Document) int {
	text, ok := otodomRegion(doc, otodomUtilitiesLabel)
	if !ok {
		return listing.Unknown
	}
	return orUnknown(parseSuffixed(text))
}

func (Otodom) Rooms(doc *goquery.Document) int {
	text, ok := otodomRegion(doc, otodomRoomsLabel)
	if !ok {
		return listing.Unknown
	}
	return orUnknown(ParseNumber(removeSpaces(text)))
}

func (Otodom) Area(doc *goquery.Document) float64 {
	text, ok := otodomRegion(doc, otodomAreaLabel)
	if !ok {
		return listing.Unknown
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return listing.Unknown
	}
	return float64(orUnknown(ParseNumber(fields[0])))
}

func (Otodom) Title(doc *goquery.Document) (string, error) {
	box := queryOne(doc, otodomTitleXPath)
	if box == nil {
		return "", fmt.Errorf("%w: %s", types.ErrMissingField, otodomTitleXPath)
	}
	return nodeChildrenText(box), nil
}

func (Otodom) District(doc *goquery.Document) (string, error) {
	crumbs := queryOne(doc, otodomBreadcrumbsXPath)
	item := childAt(crumbs, otodomDistrictIndex)
	if item == nil {
		return "", fmt.Errorf("%w: %s child %d", types.ErrMissingField, otodomBreadcrumbsXPath, otodomDistrictIndex+1)
	}
	return htmlquery.InnerText(item), nil
}

// otodomRegion scans the details table. Each region row holds the label as
// its second child node and the value as its third. A value offering to
// "ask for price" counts as missing.
func otodomRegion(doc *goquery.Document, label string) (string, bool) {
	top := root(doc)
	if top == nil {
		return "", false
	}
	regions, err := htmlquery.QueryAll(top, otodomRegionXPath)
	if err != nil {
		return "", false
	}
	for _, region := range regions {
		left, right := childAt(region, 1), childAt(region, 2)
		if left == nil || right == nil || right.FirstChild == nil {
			continue
		}
		if !strings.Contains(htmlquery.InnerText(left), label) {
			continue
		}
		text := htmlquery.InnerText(right.FirstChild)
		if !strings.Contains(text, otodomAskForPrice) {
			return text, true
		}
	}
	return "", false
}

func root(doc *goquery.Document) *html.Node {
	if doc == nil || len(doc.Nodes) == 0 {
		return nil
	}
	return doc.Nodes[0]
}

func queryOne(doc *goquery.Document, expr string) *html.Node {
	top := root(doc)
	if top == nil {
		return nil
	}
	n, err := htmlquery.Query(top, expr)
	if err != nil {
		return nil
	}
	return n
}

// childAt returns the i-th child node of n, text nodes included.
func childAt(n *html.Node, i int) *html.Node {
	if n == nil {
		return nil
	}
	c := n.FirstChild
	for ; c != nil && i > 0; i-- {
		c = c.NextSibling
	}
	return c
}

func nodeChildrenText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(htmlquery.InnerText(c))
	}
	return b.String()
}
