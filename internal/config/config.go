package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for flathunt.
type Config struct {
	Crawl   CrawlConfig   `mapstructure:"crawl"   yaml:"crawl"`
	Sources SourcesConfig `mapstructure:"sources" yaml:"sources"`
	Filter  FilterConfig  `mapstructure:"filter"  yaml:"filter"`
	Fetcher FetcherConfig `mapstructure:"fetcher" yaml:"fetcher"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// CrawlConfig controls the pagination crawler.
type CrawlConfig struct {
	// Workers bounds concurrent listing fetches within one results page.
	Workers         int    `mapstructure:"workers"          yaml:"workers"`
	MaxPages        int    `mapstructure:"max_pages"        yaml:"max_pages"` // 0 = until a page fetch fails
	ListingSelector string `mapstructure:"listing_selector" yaml:"listing_selector"`
	SkipMalformed   bool   `mapstructure:"skip_malformed"   yaml:"skip_malformed"`
}

// SourcesConfig describes how listing links are recognized per source site.
type SourcesConfig struct {
	OLXOrigin     string `mapstructure:"olx_origin"      yaml:"olx_origin"`
	OLXPathPrefix string `mapstructure:"olx_path_prefix" yaml:"olx_path_prefix"`
	OtodomDomain  string `mapstructure:"otodom_domain"   yaml:"otodom_domain"`
}

// FilterConfig holds the business acceptance rules.
type FilterConfig struct {
	MaxTotalRent      int      `mapstructure:"max_total_rent"     yaml:"max_total_rent"`
	ExcludedDistricts []string `mapstructure:"excluded_districts" yaml:"excluded_districts"`
}

// FetcherConfig controls the HTTP fetcher.
type FetcherConfig struct {
	RequestTimeout  time.Duration `mapstructure:"request_timeout"   yaml:"request_timeout"`
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
	UserAgents      []string      `mapstructure:"user_agents"       yaml:"user_agents"`
	Proxies         []string      `mapstructure:"proxies"           yaml:"proxies"`
	ProxyRotation   string        `mapstructure:"proxy_rotation"    yaml:"proxy_rotation"` // round_robin or random
}

// StorageConfig controls output/storage.
type StorageConfig struct {
	Type            string `mapstructure:"type"             yaml:"type"`
	OutputDir       string `mapstructure:"output_dir"       yaml:"output_dir"`
	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls the metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultConfig returns a Config with the defaults of the Warsaw rental search.
func DefaultConfig() *Config {
	return &Config{
		Crawl: CrawlConfig{
			Workers:         1,
			ListingSelector: "a.css-rc5s2u",
		},
		Sources: SourcesConfig{
			OLXOrigin:     "https://olx.pl",
			OLXPathPrefix: "/d/",
			OtodomDomain:  "www.otodom.pl",
		},
		Filter: FilterConfig{
			MaxTotalRent: 3000,
			ExcludedDistricts: []string{
				"Rembertów",
				"Wawer",
				"Białołęka",
				"Wesoła",
				"Ursus",
				"Włochy",
			},
		},
		Fetcher: FetcherConfig{
			RequestTimeout:  30 * time.Second,
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    20,
			ProxyRotation:   "round_robin",
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			},
		},
		Storage: StorageConfig{
			Type:            "result",
			OutputDir:       ".",
			MongoDatabase:   "flathunt",
			MongoCollection: "listings",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}
