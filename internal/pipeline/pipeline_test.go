package pipeline

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/IshaanNene/flathunt/internal/config"
	"github.com/IshaanNene/flathunt/internal/listing"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func offer(url, district string, rent, utilities int) *listing.Listing {
	return listing.New(url, "Mieszkanie", district, "opis", rent, utilities, 2, 40)
}

func TestBusinessFilter(t *testing.T) {
	f := NewBusinessFilter(config.DefaultConfig().Filter, testLogger)

	tests := []struct {
		name     string
		offer    *listing.Listing
		expected bool
	}{
		{"excluded district under ceiling", offer("a", "Wawer", 2000, 500), false},
		{"over ceiling", offer("b", "Mokotów", 2000, 2000), false},
		{"allowed", offer("c", "Mokotów", 1000, 500), true},
		{"exactly at ceiling", offer("d", "Wola", 2500, 500), true},
		{"district match is exact", offer("e", "wawer", 1000, 0), true},
		{"unknown utilities count as listed", offer("f", "Wola", 3001, listing.Unknown), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Passes(tt.offer); got != tt.expected {
				t.Errorf("Passes() = %v, expected %v (total %d, district %q)",
					got, tt.expected, tt.offer.TotalRent(), tt.offer.District)
			}
		})
	}
}

func TestAllExcludedDistricts(t *testing.T) {
	f := NewBusinessFilter(config.DefaultConfig().Filter, testLogger)
	for _, d := range []string{"Rembertów", "Wawer", "Białołęka", "Wesoła", "Ursus", "Włochy"} {
		if f.Passes(offer("u", d, 1000, 100)) {
			t.Errorf("district %q should be excluded", d)
		}
	}
}

func TestDedupMiddleware(t *testing.T) {
	p := New(testLogger)
	p.Use(NewDedupMiddleware())

	first, err := p.Process(offer("https://olx.pl/d/oferta/a", "Wola", 1, 1))
	if err != nil || first == nil {
		t.Fatal("first listing should pass")
	}
	again, err := p.Process(offer("https://olx.pl/d/oferta/a", "Ochota", 2, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != nil {
		t.Error("listing with a seen URL should be dropped")
	}
}

type failingMiddleware struct{}

func (failingMiddleware) Name() string { return "failing" }

func (failingMiddleware) Process(l *listing.Listing) (*listing.Listing, error) {
	return nil, errors.New("boom")
}

func TestPipelineError(t *testing.T) {
	p := New(testLogger)
	p.Use(&RentCeilingMiddleware{Max: 10000})
	p.Use(failingMiddleware{})

	if p.Len() != 2 {
		t.Fatalf("expected 2 middlewares, got %d", p.Len())
	}

	_, err := p.Process(offer("x", "Wola", 1, 1))
	var pe *Error
	if !errors.As(err, &pe) {
		t.Fatalf("expected pipeline error, got %v", err)
	}
	if pe.Stage != "failing" || pe.URL != "x" {
		t.Errorf("unexpected error details: %+v", pe)
	}
}
