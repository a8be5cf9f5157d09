package pipeline

import (
	"log/slog"
	"sync"

	"github.com/IshaanNene/flathunt/internal/config"
	"github.com/IshaanNene/flathunt/internal/listing"
)

// RentCeilingMiddleware drops listings whose total rent exceeds Max.
type RentCeilingMiddleware struct {
	Max int
}

func (m *RentCeilingMiddleware) Name() string { return "rent_ceiling" }

func (m *RentCeilingMiddleware) Process(l *listing.Listing) (*listing.Listing, error) {
	if l.TotalRent() > m.Max {
		return nil, nil
	}
	return l, nil
}

// DistrictExclusionMiddleware drops listings located in an excluded district.
// Districts are compared exactly.
type DistrictExclusionMiddleware struct {
	excluded map[string]struct{}
}

func NewDistrictExclusionMiddleware(districts []string) *DistrictExclusionMiddleware {
	m := &DistrictExclusionMiddleware{excluded: make(map[string]struct{}, len(districts))}
	for _, d := range districts {
		m.excluded[d] = struct{}{}
	}
	return m
}

func (m *DistrictExclusionMiddleware) Name() string { return "district_exclusion" }

func (m *DistrictExclusionMiddleware) Process(l *listing.Listing) (*listing.Listing, error) {
	if _, ok := m.excluded[l.District]; ok {
		return nil, nil
	}
	return l, nil
}

// DedupMiddleware drops listings whose URL was already processed.
type DedupMiddleware struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewDedupMiddleware() *DedupMiddleware {
	return &DedupMiddleware{
		seen: make(map[string]struct{}),
	}
}

func (m *DedupMiddleware) Name() string { return "dedup" }

func (m *DedupMiddleware) Process(l *listing.Listing) (*listing.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.seen[l.Key()]; exists {
		return nil, nil
	}
	m.seen[l.Key()] = struct{}{}
	return l, nil
}

// BusinessFilter accepts listings within the rent ceiling and outside the
// excluded districts.
type BusinessFilter struct {
	pipe *Pipeline
}

// NewBusinessFilter builds the filter from the filter config section.
func NewBusinessFilter(cfg config.FilterConfig, logger *slog.Logger) *BusinessFilter {
	pipe := New(logger)
	pipe.Use(&RentCeilingMiddleware{Max: cfg.MaxTotalRent})
	pipe.Use(NewDistrictExclusionMiddleware(cfg.ExcludedDistricts))
	return &BusinessFilter{pipe: pipe}
}

// Passes reports whether the listing is acceptable.
func (f *BusinessFilter) Passes(l *listing.Listing) bool {
	kept, err := f.pipe.Process(l)
	return err == nil && kept != nil
}
