package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/IshaanNene/flathunt/internal/config"
	"github.com/IshaanNene/flathunt/internal/extract"
	"github.com/IshaanNene/flathunt/internal/fetcher"
	"github.com/IshaanNene/flathunt/internal/listing"
	"github.com/IshaanNene/flathunt/internal/observability"
	"github.com/IshaanNene/flathunt/internal/pipeline"
	"github.com/IshaanNene/flathunt/internal/types"
)

// Crawler walks the pages of a search result, dispatches every new listing
// link to its source strategy and collects the accepted offers.
type Crawler struct {
	cfg     *config.Config
	logger  *slog.Logger
	fetcher fetcher.Fetcher
	sources extract.Sources
	filter  *pipeline.BusinessFilter
	metrics *observability.Metrics
	seen    *SeenSet
}

// New creates a Crawler. The seen set lives as long as the Crawler, so a
// second Crawl on the same instance skips links found by the first.
func New(cfg *config.Config, f fetcher.Fetcher, metrics *observability.Metrics, logger *slog.Logger) *Crawler {
	logger = logger.With("component", "crawler")
	return &Crawler{
		cfg:     cfg,
		logger:  logger,
		fetcher: f,
		sources: extract.Sources{
			OLXOrigin:     cfg.Sources.OLXOrigin,
			OLXPathPrefix: cfg.Sources.OLXPathPrefix,
			OtodomDomain:  cfg.Sources.OtodomDomain,
		},
		filter:  pipeline.NewBusinessFilter(cfg.Filter, logger),
		metrics: metrics,
		seen:    NewSeenSet(1024),
	}
}

// Crawl fetches page 1 of baseURL and then pages 2, 3, ... until a page
// fetch fails or crawl.max_pages is reached. Accepted listings are returned
// in discovery order per page.
//
// An unknown listing source, or a malformed listing when skip_malformed is
// off, aborts the crawl and discards everything collected.
func (c *Crawler) Crawl(ctx context.Context, baseURL, keyword string) ([]*listing.Listing, error) {
	start := time.Now()
	c.logger.Info("crawl started", "url", baseURL, "keyword", keyword, "workers", c.workers())

	var results []*listing.Listing
	pages := 0
	for page := 1; ; page++ {
		if limit := c.cfg.Crawl.MaxPages; limit > 0 && page > limit {
			c.logger.Info("page limit reached", "max_pages", limit)
			break
		}

		found, ok, err := c.crawlPage(ctx, baseURL, page, keyword)
		if err != nil {
			c.logger.Error("crawl aborted", "page", page, "error", err)
			return nil, err
		}
		if !ok {
			break
		}
		pages++
		results = append(results, found...)
	}

	c.logger.Info("crawl finished",
		"pages", pages,
		"accepted", len(results),
		"links_seen", c.seen.Len(),
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
	return results, nil
}

// crawlPage processes one results page. ok is false when the page could not
// be fetched, which ends pagination.
func (c *Crawler) crawlPage(ctx context.Context, baseURL string, page int, keyword string) ([]*listing.Listing, bool, error) {
	req, err := types.NewPageRequest(baseURL, page)
	if err != nil {
		return nil, false, err
	}

	resp, err := c.fetcher.Fetch(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		c.metrics.PagesFailed.Add(1)
		c.logger.Info("pagination finished", "page", page, "error", err)
		return nil, false, nil
	}
	if !resp.IsSuccess() {
		c.metrics.PagesFailed.Add(1)
		c.logger.Info("pagination finished", "page", page, "status", resp.StatusCode)
		return nil, false, nil
	}
	c.metrics.PagesFetched.Add(1)
	c.metrics.BytesDownloaded.Add(int64(len(resp.Body)))

	doc, err := resp.Document()
	if err != nil {
		return nil, false, err
	}

	hrefs := c.listingLinks(doc)
	c.metrics.LinksFound.Add(int64(len(hrefs)))
	c.logger.Debug("results page parsed", "page", page, "links", len(hrefs), "url", req.URLString())

	// One slot per link keeps discovery order regardless of worker count.
	slots := make([]*listing.Listing, len(hrefs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers())

	for i, href := range hrefs {
		if !c.seen.MarkIfNew(href) {
			c.metrics.LinksDuplicate.Add(1)
			continue
		}

		kind, target, err := c.sources.Classify(href)
		if err != nil {
			g.Go(func() error { return err })
			break
		}
		strategy := extract.StrategyFor(kind)

		g.Go(func() error {
			l, err := c.processListing(gctx, target, keyword, strategy)
			if err != nil {
				return err
			}
			slots[i] = l
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, false, err
	}

	var found []*listing.Listing
	for _, l := range slots {
		if l != nil {
			found = append(found, l)
		}
	}
	return found, true, nil
}

// listingLinks returns the href of every listing anchor on a results page.
// Anchors without an href are skipped.
func (c *Crawler) listingLinks(doc *goquery.Document) []string {
	var hrefs []string
	doc.Find(c.cfg.Crawl.ListingSelector).Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			hrefs = append(hrefs, href)
		}
	})
	return hrefs
}

// processListing fetches one offer and applies the business filter.
func (c *Crawler) processListing(ctx context.Context, url, keyword string, strategy extract.Strategy) (*listing.Listing, error) {
	l, err := c.FetchOffer(ctx, url, keyword, strategy)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.metrics.ListingsMalformed.Add(1)
		if c.cfg.Crawl.SkipMalformed {
			c.logger.Warn("skipping malformed listing", "url", url, "error", err)
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s: %w", url, err)
	}
	if l == nil {
		return nil, nil
	}
	c.metrics.ListingsMatched.Add(1)

	if !c.filter.Passes(l) {
		c.metrics.ListingsFiltered.Add(1)
		c.logger.Debug("offer filtered", "url", l.URL, "district", l.District, "total_rent", l.TotalRent())
		return nil, nil
	}

	c.metrics.ListingsAccepted.Add(1)
	c.logger.Info("offer accepted",
		"url", l.URL,
		"name", l.Name,
		"district", l.District,
		"total_rent", l.TotalRent(),
	)
	return l, nil
}

func (c *Crawler) workers() int {
	if c.cfg.Crawl.Workers < 1 {
		return 1
	}
	return c.cfg.Crawl.Workers
}
