package observability

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
)

// Metrics tracks operational counters for a crawl.
type Metrics struct {
	// Search result pages
	PagesFetched atomic.Int64
	PagesFailed  atomic.Int64

	// Listing links
	LinksFound     atomic.Int64
	LinksDuplicate atomic.Int64

	// Listing detail pages
	ListingsFetched   atomic.Int64
	ListingsFailed    atomic.Int64
	ListingsMatched   atomic.Int64
	ListingsFiltered  atomic.Int64
	ListingsAccepted  atomic.Int64
	ListingsMalformed atomic.Int64

	ListingsStored atomic.Int64

	BytesDownloaded atomic.Int64

	logger *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		logger: logger.With("component", "metrics"),
	}
}

// ServeHTTP serves metrics in Prometheus text exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	metrics := []struct {
		name  string
		help  string
		value int64
	}{
		{"flathunt_pages_fetched_total", "Search result pages fetched", m.PagesFetched.Load()},
		{"flathunt_pages_failed_total", "Search result page fetches that ended pagination", m.PagesFailed.Load()},
		{"flathunt_links_found_total", "Listing links discovered", m.LinksFound.Load()},
		{"flathunt_links_duplicate_total", "Listing links skipped as already seen", m.LinksDuplicate.Load()},
		{"flathunt_listings_fetched_total", "Listing pages fetched", m.ListingsFetched.Load()},
		{"flathunt_listings_failed_total", "Listing page fetches that failed", m.ListingsFailed.Load()},
		{"flathunt_listings_matched_total", "Listings whose description contains the keyword", m.ListingsMatched.Load()},
		{"flathunt_listings_filtered_total", "Listings rejected by the business filter", m.ListingsFiltered.Load()},
		{"flathunt_listings_accepted_total", "Listings accepted into the result set", m.ListingsAccepted.Load()},
		{"flathunt_listings_malformed_total", "Listings missing a required field", m.ListingsMalformed.Load()},
		{"flathunt_listings_stored_total", "Listings written to storage", m.ListingsStored.Load()},
		{"flathunt_bytes_downloaded_total", "Total bytes downloaded", m.BytesDownloaded.Load()},
	}

	for _, metric := range metrics {
		fmt.Fprintf(w, "# HELP %s %s\n", metric.name, metric.help)
		fmt.Fprintf(w, "# TYPE %s counter\n", metric.name)
		fmt.Fprintf(w, "%s %d\n", metric.name, metric.value)
	}
}

// StartServer starts the metrics HTTP server in the background.
func (m *Metrics) StartServer(port int, path string) {
	mux := http.NewServeMux()
	mux.Handle(path, m)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	addr := fmt.Sprintf(":%d", port)
	m.logger.Info("metrics server starting", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			m.logger.Error("metrics server error", "error", err)
		}
	}()
}

// Snapshot returns all metrics as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"pages_fetched":      m.PagesFetched.Load(),
		"pages_failed":       m.PagesFailed.Load(),
		"links_found":        m.LinksFound.Load(),
		"links_duplicate":    m.LinksDuplicate.Load(),
		"listings_fetched":   m.ListingsFetched.Load(),
		"listings_failed":    m.ListingsFailed.Load(),
		"listings_matched":   m.ListingsMatched.Load(),
		"listings_filtered":  m.ListingsFiltered.Load(),
		"listings_accepted":  m.ListingsAccepted.Load(),
		"listings_malformed": m.ListingsMalformed.Load(),
		"listings_stored":    m.ListingsStored.Load(),
		"bytes_downloaded":   m.BytesDownloaded.Load(),
	}
}
