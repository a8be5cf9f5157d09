package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Crawl.Workers < 1 {
		return fmt.Errorf("crawl.workers must be >= 1, got %d", cfg.Crawl.Workers)
	}
	if cfg.Crawl.Workers > 64 {
		return fmt.Errorf("crawl.workers must be <= 64, got %d", cfg.Crawl.Workers)
	}
	if cfg.Crawl.MaxPages < 0 {
		return fmt.Errorf("crawl.max_pages must be >= 0, got %d", cfg.Crawl.MaxPages)
	}
	if strings.TrimSpace(cfg.Crawl.ListingSelector) == "" {
		return fmt.Errorf("crawl.listing_selector must not be empty")
	}

	if err := ValidateURL(cfg.Sources.OLXOrigin); err != nil {
		return fmt.Errorf("sources.olx_origin: %w", err)
	}
	if !strings.HasPrefix(cfg.Sources.OLXPathPrefix, "/") {
		return fmt.Errorf("sources.olx_path_prefix must start with '/', got %q", cfg.Sources.OLXPathPrefix)
	}
	if cfg.Sources.OtodomDomain == "" {
		return fmt.Errorf("sources.otodom_domain must not be empty")
	}

	if cfg.Filter.MaxTotalRent <= 0 {
		return fmt.Errorf("filter.max_total_rent must be > 0, got %d", cfg.Filter.MaxTotalRent)
	}

	if cfg.Fetcher.RequestTimeout <= 0 {
		return fmt.Errorf("fetcher.request_timeout must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}
	if r := cfg.Fetcher.ProxyRotation; r != "round_robin" && r != "random" {
		return fmt.Errorf("fetcher.proxy_rotation must be 'round_robin' or 'random', got %q", r)
	}

	validStorageTypes := map[string]bool{
		"result": true, "jsonl": true, "csv": true, "mongo": true,
	}
	storageTypes := 0
	for _, t := range strings.Split(cfg.Storage.Type, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !validStorageTypes[t] {
			return fmt.Errorf("storage.type %q is not supported (valid: result, jsonl, csv, mongo)", t)
		}
		if t == "mongo" && cfg.Storage.MongoURI == "" {
			return fmt.Errorf("storage.mongo_uri is required for mongo storage")
		}
		storageTypes++
	}
	if storageTypes == 0 {
		return fmt.Errorf("storage.type must name at least one backend")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be 1-65535, got %d", cfg.Metrics.Port)
		}
	}

	return nil
}

// ValidateURL checks if a URL string is valid for crawling.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
