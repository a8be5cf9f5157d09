package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/flathunt/internal/listing"
	"github.com/IshaanNene/flathunt/internal/types"
)

const olxHTML = `<!DOCTYPE html>
<html>
<body>
    <h1 class="css-1soizd2 er34gjf0">Przytulne 2 pokoje na Mokotowie</h1>
    <h3 class="css-t9ee1 er34gjf0">2 800 zł</h3>
    <ul>
        <li><p class="css-b5m1rv er34gjf0">Prywatne</p></li>
        <li><p class="css-b5m1rv er34gjf0">Czynsz (dodatkowo): 450 zł</p></li>
        <li><p class="css-b5m1rv er34gjf0">Liczba pokoi: 2 pokoje</p></li>
        <li><p class="css-b5m1rv er34gjf0">Powierzchnia: 48,5 m²</p></li>
    </ul>
    <div class="css-bgzo2k er34gjf0">Mieszkanie po remoncie.<br>Zwierzęta akceptowane.</div>
    <ol data-testid="breadcrumbs"><li><a href="/">Strona główna</a></li><li><a href="/nieruchomosci/">Nieruchomości</a></li><li><a href="#">Warszawa - Mokotów</a></li></ol>
</body>
</html>`

const otodomHTML = `<!DOCTYPE html>
<html>
<body>
    <div data-cy="ad.breadcrumbs"><a>Ogłoszenia</a><a>Wynajem</a><a>Mieszkania</a><a>Warszawa</a><a>Wola</a><a>Mirów</a></div>
    <div data-cy="adPageAdTitle"><h1>Nowoczesne </h1><span>2-pokojowe</span></div>
    <strong data-cy="adPageHeaderPrice">3 100 zł</strong>
    <div role="region"><span>i</span><div>Powierzchnia</div><div><div>52,3 m²</div></div></div>
    <div role="region"><span>i</span><div>Liczba pokoi</div><div><div>2</div></div></div>
    <div role="region"><span>i</span><div>Czynsz</div><div><div>Zapytaj o cenę</div></div></div>
    <div data-cy="adPageAdDescription"><p>Blisko metra.</p><p>Balkon.</p></div>
</body>
</html>`

func mustDoc(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

// --- Numeric parsing ---

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"1234,50", 1234},
		{"999,99", 999},
		{"2800", 2800},
		{"48,5", 48},
		{" 12 ", 12},
		{"0,99", 0},
	}

	for _, tt := range tests {
		got, err := ParseNumber(tt.input)
		if err != nil {
			t.Errorf("ParseNumber(%q) error: %v", tt.input, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseNumber(%q) = %d, expected %d", tt.input, got, tt.expected)
		}
	}
}

func TestParseNumberRejects(t *testing.T) {
	for _, input := range []string{"", "1.234,50", "abc", "NaN", "Inf", "1,2,3"} {
		if _, err := ParseNumber(input); !errors.Is(err, types.ErrBadNumber) {
			t.Errorf("ParseNumber(%q) expected ErrBadNumber, got %v", input, err)
		}
	}
}

func TestDropHelpers(t *testing.T) {
	if got := dropLast("48 m²", 2); got != "48 " {
		t.Errorf("dropLast multi-byte suffix: got %q", got)
	}
	if got := dropLast("z", 2); got != "" {
		t.Errorf("dropLast short string: got %q", got)
	}
	if got := dropFirst("Powierzchnia: 48", len("Powierzchnia:")); got != " 48" {
		t.Errorf("dropFirst: got %q", got)
	}
}

// --- Source classification ---

func TestClassify(t *testing.T) {
	s := Sources{OLXOrigin: "https://olx.pl", OLXPathPrefix: "/d/", OtodomDomain: "www.otodom.pl"}

	kind, u, err := s.Classify("/d/oferta/xyz")
	if err != nil || kind != SourceOLX || u != "https://olx.pl/d/oferta/xyz" {
		t.Errorf("olx href: got kind=%v url=%q err=%v", kind, u, err)
	}

	kind, u, err = s.Classify("https://www.otodom.pl/pl/oferta/abc")
	if err != nil || kind != SourceOtodom || u != "https://www.otodom.pl/pl/oferta/abc" {
		t.Errorf("otodom href: got kind=%v url=%q err=%v", kind, u, err)
	}

	_, _, err = s.Classify("https://unknown.example/x")
	if !errors.Is(err, types.ErrUnknownSource) {
		t.Fatalf("expected ErrUnknownSource, got %v", err)
	}
	var srcErr *types.SourceError
	if !errors.As(err, &srcErr) || srcErr.Href != "https://unknown.example/x" {
		t.Errorf("expected SourceError carrying the href, got %v", err)
	}
}

func TestStrategyFor(t *testing.T) {
	if StrategyFor(SourceOLX).Kind() != SourceOLX {
		t.Error("olx kind should map to the OLX strategy")
	}
	if StrategyFor(SourceOtodom).Kind() != SourceOtodom {
		t.Error("otodom kind should map to the Otodom strategy")
	}
	if StrategyFor(SourceKind(0)) != nil {
		t.Error("unknown kind should have no strategy")
	}
}

// --- OLX ---

func TestOLXFields(t *testing.T) {
	doc := mustDoc(t, olxHTML)
	s := OLX{}

	if got := s.Description(doc); got != "Mieszkanie po remoncie.Zwierzęta akceptowane." {
		t.Errorf("description: got %q", got)
	}
	rent, err := s.Rent(doc)
	if err != nil || rent != 2800 {
		t.Errorf("rent: got %d, %v", rent, err)
	}
	if got := s.Utilities(doc); got != 450 {
		t.Errorf("utilities: got %d", got)
	}
	if got := s.Rooms(doc); got != 2 {
		t.Errorf("rooms: got %d", got)
	}
	if got := s.Area(doc); got != 48 {
		t.Errorf("area: got %v", got)
	}
	title, err := s.Title(doc)
	if err != nil || title != "Przytulne 2 pokoje na Mokotowie" {
		t.Errorf("title: got %q, %v", title, err)
	}
	district, err := s.District(doc)
	if err != nil || district != "Mokotów" {
		t.Errorf("district: got %q, %v", district, err)
	}
}

func TestOLXStudioAndMissingProperties(t *testing.T) {
	body := `<html><body>
<p class="css-b5m1rv er34gjf0">Liczba pokoi: Kawalerka</p>
</body></html>`
	doc := mustDoc(t, body)
	s := OLX{}

	if got := s.Rooms(doc); got != 1 {
		t.Errorf("studio rooms: expected 1, got %d", got)
	}
	if got := s.Utilities(doc); got != listing.Unknown {
		t.Errorf("missing utilities: expected sentinel, got %d", got)
	}
	if got := s.Area(doc); got != listing.Unknown {
		t.Errorf("missing area: expected sentinel, got %v", got)
	}
	if got := s.Description(doc); got != "" {
		t.Errorf("missing description: expected empty, got %q", got)
	}
}

func TestOLXRequiredFieldsMissing(t *testing.T) {
	doc := mustDoc(t, `<html><body><p>nothing here</p></body></html>`)
	s := OLX{}

	if _, err := s.Rent(doc); !errors.Is(err, types.ErrMissingField) {
		t.Errorf("rent: expected ErrMissingField, got %v", err)
	}
	if _, err := s.Title(doc); !errors.Is(err, types.ErrMissingField) {
		t.Errorf("title: expected ErrMissingField, got %v", err)
	}
	if _, err := s.District(doc); !errors.Is(err, types.ErrMissingField) {
		t.Errorf("district: expected ErrMissingField, got %v", err)
	}
}

func TestOLXMatchesExactClassAttribute(t *testing.T) {
	body := `<html><body>
<h3 class="css-t9ee1 er34gjf0 promoted">9 999 zł</h3>
<h3 class="css-t9ee1 er34gjf0">2 100 zł</h3>
<p class="css-b5m1rv er34gjf0 badge">Czynsz (dodatkowo): 1 zł</p>
<p class="css-b5m1rv er34gjf0">Czynsz (dodatkowo): 350 zł</p>
<div class="css-bgzo2k er34gjf0 promo">Reklama</div>
<div class="css-bgzo2k er34gjf0">Balkon</div>
</body></html>`
	doc := mustDoc(t, body)
	s := OLX{}

	if got := s.Description(doc); got != "Balkon" {
		t.Errorf("description: expected %q, got %q", "Balkon", got)
	}
	if rent, err := s.Rent(doc); err != nil || rent != 2100 {
		t.Errorf("rent: got %d, %v", rent, err)
	}
	if got := s.Utilities(doc); got != 350 {
		t.Errorf("utilities: expected 350, got %d", got)
	}
}

func TestOLXUnparseableRent(t *testing.T) {
	doc := mustDoc(t, `<html><body><h3 class="css-t9ee1 er34gjf0">Zamienię</h3></body></html>`)
	if _, err := (OLX{}).Rent(doc); !errors.Is(err, types.ErrBadNumber) {
		t.Errorf("expected ErrBadNumber, got %v", err)
	}
}

// --- Otodom ---

func TestOtodomFields(t *testing.T) {
	doc := mustDoc(t, otodomHTML)
	s := Otodom{}

	if got := s.Description(doc); got != "Blisko metra.Balkon." {
		t.Errorf("description: got %q", got)
	}
	rent, err := s.Rent(doc)
	if err != nil || rent != 3100 {
		t.Errorf("rent: got %d, %v", rent, err)
	}
	if got := s.Utilities(doc); got != listing.Unknown {
		t.Errorf("utilities behind 'Zapytaj': expected sentinel, got %d", got)
	}
	if got := s.Rooms(doc); got != 2 {
		t.Errorf("rooms: got %d", got)
	}
	if got := s.Area(doc); got != 52 {
		t.Errorf("area: got %v", got)
	}
	title, err := s.Title(doc)
	if err != nil || title != "Nowoczesne 2-pokojowe" {
		t.Errorf("title: got %q, %v", title, err)
	}
	district, err := s.District(doc)
	if err != nil || district != "Wola" {
		t.Errorf("district: got %q, %v", district, err)
	}
}

func TestOtodomUtilitiesPresent(t *testing.T) {
	body := `<html><body>
<div role="region"><span>i</span><div>Czynsz</div><div><div>600 zł</div></div></div>
</body></html>`
	if got := (Otodom{}).Utilities(mustDoc(t, body)); got != 600 {
		t.Errorf("expected 600, got %d", got)
	}
}

func TestOtodomMissingMarkup(t *testing.T) {
	doc := mustDoc(t, `<html><body></body></html>`)
	s := Otodom{}

	if s.Description(doc) != "" {
		t.Error("missing description should be empty")
	}
	if s.Rooms(doc) != listing.Unknown || s.Utilities(doc) != listing.Unknown || s.Area(doc) != listing.Unknown {
		t.Error("missing regions should yield sentinels")
	}
	if _, err := s.Rent(doc); !errors.Is(err, types.ErrMissingField) {
		t.Errorf("rent: expected ErrMissingField, got %v", err)
	}
	if _, err := s.Title(doc); !errors.Is(err, types.ErrMissingField) {
		t.Errorf("title: expected ErrMissingField, got %v", err)
	}
	if _, err := s.District(doc); !errors.Is(err, types.ErrMissingField) {
		t.Errorf("district: expected ErrMissingField, got %v", err)
	}
}
