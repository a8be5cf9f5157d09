package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/IshaanNene/flathunt/internal/listing"
)

// Middleware inspects a listing and returns it to keep it or nil to drop it.
// Listings are never modified.
type Middleware interface {
	// Name returns the middleware's identifier.
	Name() string

	// Process returns the listing to keep it, or nil to drop it.
	Process(l *listing.Listing) (*listing.Listing, error)
}

// Error wraps a middleware failure with the stage it happened in.
type Error struct {
	Stage string
	URL   string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("pipeline error at stage %q for %s: %v", e.Stage, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Pipeline chains middleware processors together.
type Pipeline struct {
	middlewares []Middleware
	logger      *slog.Logger
}

// New creates a new Pipeline.
func New(logger *slog.Logger) *Pipeline {
	return &Pipeline{
		logger: logger.With("component", "pipeline"),
	}
}

// Use adds a middleware to the pipeline chain.
func (p *Pipeline) Use(mw Middleware) {
	p.middlewares = append(p.middlewares, mw)
	p.logger.Debug("middleware added", "name", mw.Name(), "position", len(p.middlewares))
}

// Process runs the listing through all middleware in order.
func (p *Pipeline) Process(l *listing.Listing) (*listing.Listing, error) {
	for _, mw := range p.middlewares {
		result, err := mw.Process(l)
		if err != nil {
			return nil, &Error{Stage: mw.Name(), URL: l.URL, Err: err}
		}
		if result == nil {
			p.logger.Debug("listing dropped", "stage", mw.Name(), "url", l.URL)
			return nil, nil
		}
	}
	return l, nil
}

// Len returns the number of middleware in the chain.
func (p *Pipeline) Len() int {
	return len(p.middlewares)
}
