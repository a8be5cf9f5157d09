package crawler

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/flathunt/internal/extract"
	"github.com/IshaanNene/flathunt/internal/listing"
	"github.com/IshaanNene/flathunt/internal/types"
)

// FetchOffer fetches one listing page and extracts it with strategy when its
// description contains keyword.
//
// A failed fetch or a keyword mismatch returns nil, nil. A page missing a
// required field returns a *types.ExtractError.
func (c *Crawler) FetchOffer(ctx context.Context, url, keyword string, strategy extract.Strategy) (*listing.Listing, error) {
	req, err := types.NewRequest(url)
	if err != nil {
		return nil, err
	}
	req.Tag = types.TagListing

	resp, err := c.fetcher.Fetch(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.metrics.ListingsFailed.Add(1)
		c.logger.Warn("listing fetch failed", "url", url, "error", err)
		return nil, nil
	}
	if !resp.IsSuccess() {
		c.metrics.ListingsFailed.Add(1)
		c.logger.Info("listing unavailable", "url", url, "status", resp.StatusCode)
		return nil, nil
	}
	c.metrics.ListingsFetched.Add(1)
	c.metrics.BytesDownloaded.Add(int64(len(resp.Body)))

	doc, err := resp.Document()
	if err != nil {
		return nil, err
	}
	return Extract(url, doc, keyword, strategy)
}

// Extract builds a listing from a parsed page. The description is read first
// and the remaining fields only when it contains keyword (case-sensitive).
func Extract(url string, doc *goquery.Document, keyword string, strategy extract.Strategy) (*listing.Listing, error) {
	description := strategy.Description(doc)
	if !strings.Contains(description, keyword) {
		return nil, nil
	}

	name, err := strategy.Title(doc)
	if err != nil {
		return nil, fieldError(url, strategy, "name", err)
	}
	district, err := strategy.District(doc)
	if err != nil {
		return nil, fieldError(url, strategy, "district", err)
	}
	rent, err := strategy.Rent(doc)
	if err != nil {
		return nil, fieldError(url, strategy, "rent", err)
	}

	return listing.New(
		url,
		name,
		district,
		description,
		rent,
		strategy.Utilities(doc),
		strategy.Rooms(doc),
		strategy.Area(doc),
	), nil
}

func fieldError(url string, strategy extract.Strategy, field string, err error) error {
	return &types.ExtractError{
		URL:    url,
		Source: strategy.Kind().String(),
		Field:  field,
		Err:    err,
	}
}
