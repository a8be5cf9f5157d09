package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"
)

// ProxyManager rotates outgoing requests across a pool of proxies and
// benches proxies whose requests fail at the transport level.
type ProxyManager struct {
	proxies  []*proxyEntry
	rotation string
	index    atomic.Int64
	mu       sync.RWMutex
	logger   *slog.Logger
}

type proxyEntry struct {
	URL     *url.URL
	Healthy bool
	LastErr error
	LastUse time.Time
	mu      sync.Mutex
}

type proxyKey struct{}

// NewProxyManager creates a ProxyManager. rotation is "round_robin" or
// "random". Unparseable URLs are an error.
func NewProxyManager(rawURLs []string, rotation string, logger *slog.Logger) (*ProxyManager, error) {
	pm := &ProxyManager{
		proxies:  make([]*proxyEntry, 0, len(rawURLs)),
		rotation: rotation,
		logger:   logger.With("component", "proxy_manager"),
	}

	for _, rawURL := range rawURLs {
		u, err := url.Parse(rawURL)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy URL %q", rawURL)
		}
		pm.proxies = append(pm.proxies, &proxyEntry{
			URL:     u,
			Healthy: true,
		})
	}

	pm.logger.Info("proxy manager initialized", "count", len(pm.proxies), "rotation", rotation)
	return pm, nil
}

// WithProxy picks the next proxy and binds it to ctx. It returns the chosen
// proxy, or nil when none is healthy and the request goes direct.
func (pm *ProxyManager) WithProxy(ctx context.Context) (context.Context, *url.URL) {
	proxy := pm.Next()
	if proxy == nil {
		return ctx, nil
	}
	return context.WithValue(ctx, proxyKey{}, proxy), proxy
}

// ProxyFunc returns an http.Transport proxy function that uses the proxy
// bound by WithProxy.
func (pm *ProxyManager) ProxyFunc() func(*http.Request) (*url.URL, error) {
	return func(req *http.Request) (*url.URL, error) {
		proxy, _ := req.Context().Value(proxyKey{}).(*url.URL)
		return proxy, nil
	}
}

// Next returns the next proxy URL based on the rotation strategy.
func (pm *ProxyManager) Next() *url.URL {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	healthy := pm.healthyProxies()
	if len(healthy) == 0 {
		return nil
	}

	var entry *proxyEntry
	switch pm.rotation {
	case "random":
		entry = healthy[rand.Intn(len(healthy))]
	default: // round_robin
		entry = healthy[(pm.index.Add(1)-1)%int64(len(healthy))]
	}
	entry.mu.Lock()
	entry.LastUse = time.Now()
	entry.mu.Unlock()
	return entry.URL
}

// MarkFailed marks a proxy as unhealthy.
func (pm *ProxyManager) MarkFailed(proxyURL *url.URL, err error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	for _, p := range pm.proxies {
		if p.URL.String() == proxyURL.String() {
			p.mu.Lock()
			p.Healthy = false
			p.LastErr = err
			p.mu.Unlock()
			pm.logger.Warn("proxy marked unhealthy",
				"proxy", proxyURL.Host,
				"error", err,
			)
			break
		}
	}
}

// HealthyCount returns the number of healthy proxies.
func (pm *ProxyManager) HealthyCount() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.healthyProxies())
}

func (pm *ProxyManager) healthyProxies() []*proxyEntry {
	healthy := make([]*proxyEntry, 0, len(pm.proxies))
	for _, p := range pm.proxies {
		p.mu.Lock()
		if p.Healthy {
			healthy = append(healthy, p)
		}
		p.mu.Unlock()
	}
	return healthy
}
