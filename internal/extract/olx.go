package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/flathunt/internal/listing"
	"github.com/IshaanNene/flathunt/internal/types"
)

// OLX page markers.
const (
	olxDescriptionSel = `div[class="css-bgzo2k er34gjf0"]`
	olxPriceSel       = `h3[class="css-t9ee1 er34gjf0"]`
	olxPropertySel    = `p[class="css-b5m1rv er34gjf0"]`
	olxBreadcrumbsSel = `ol[data-testid="breadcrumbs"]`

	olxUtilitiesLabel = "Czynsz (dodatkowo):"
	olxRoomsLabel     = "Liczba pokoi:"
	olxAreaLabel      = "Powierzchnia:"
	olxStudioToken    = "Kawalerka"
)

// OLX extracts fields from olx.pl listing pages using CSS selectors.
type OLX struct{}

func (OLX) Kind() SourceKind { return SourceOLX }

func (OLX) Description(doc *goquery.Document) string {
	box := doc.Find(olxDescriptionSel).First()
	if box.Length() == 0 {
		return ""
	}
	return childrenText(box)
}

func (OLX) Rent(doc *goquery.Document) (int, error) {
	box := doc.Find(olxPriceSel).First()
	text, ok := firstChildText(box)
	if !ok {
		return 0, fmt.Errorf("%w: %s", types.ErrMissingField, olxPriceSel)
	}
	return parseSuffixed(text)
}

func (OLX) Utilities(doc *goquery.Document) int {
	text, ok := olxProperty(doc, olxUtilitiesLabel)
	if !ok {
		return listing.Unknown
	}
	return orUnknown(parseSuffixed(text))
}

func (OLX) Rooms(doc *goquery.Document) int {
	text, ok := olxProperty(doc, olxRoomsLabel)
	if !ok {
		return listing.Unknown
	}
	if strings.Contains(text, olxStudioToken) {
		return 1
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return listing.Unknown
	}
	return orUnknown(ParseNumber(fields[0]))
}

func (OLX) Area(doc *goquery.Document) float64 {
	text, ok := olxProperty(doc, olxAreaLabel)
	if !ok {
		return listing.Unknown
	}
	return float64(orUnknown(parseSuffixed(text)))
}

func (OLX) Title(doc *goquery.Document) (string, error) {
	text, ok := firstChildText(doc.Find("h1").First())
	if !ok {
		return "", fmt.Errorf("%w: h1", types.ErrMissingField)
	}
	return text, nil
}

// District reads the last breadcrumb, e.g. "Warszawa - Mokotów",
// and drops its first two words.
func (OLX) District(doc *goquery.Document) (string, error) {
	crumbs := doc.Find(olxBreadcrumbsSel).First()
	last := crumbs.Contents().Last()
	if last.Length() == 0 {
		return "", fmt.Errorf("%w: %s", types.ErrMissingField, olxBreadcrumbsSel)
	}
	words := strings.Fields(last.Text())
	if len(words) <= 2 {
		return "", nil
	}
	return strings.Join(words[2:], " "), nil
}

// olxProperty finds the property box containing label and returns its first
// child's text with the label removed.
func olxProperty(doc *goquery.Document, label string) (string, bool) {
	box := doc.Find(olxPropertySel).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), label)
	}).First()
	text, ok := firstChildText(box)
	if !ok {
		return "", false
	}
	return dropFirst(text, utf8.RuneCountInString(label)), true
}

func childrenText(sel *goquery.Selection) string {
	var b strings.Builder
	sel.Contents().Each(func(_ int, child *goquery.Selection) {
		b.WriteString(child.Text())
	})
	return b.String()
}

func firstChildText(sel *goquery.Selection) (string, bool) {
	if sel.Length() == 0 {
		return "", false
	}
	first := sel.Contents().First()
	if first.Length() == 0 {
		return "", false
	}
	return first.Text(), true
}
