// Package memberdata gathers a member's record from the configured upstream
// services and projects it onto the field catalog.
package memberdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/commhub/backend/internal/domain/communication"
	"github.com/commhub/backend/internal/infrastructure/logger"
	"github.com/commhub/backend/internal/infrastructure/outbound"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultDateLayout = "02/01/2006"
	maxBodySize       = 1 << 20
)

// Source is one upstream member record service. Path must contain {id}.
type Source struct {
	Name    string
	BaseURL string
	Path    string
}

// Config holds aggregator settings
type Config struct {
	Sources      []Source
	AllowedHosts []string
	Timeout      time.Duration
	DateLayout   string
}

// Aggregator calls every source concurrently and flattens the results
type Aggregator struct {
	sources    []Source
	client     *outbound.Client
	timeout    time.Duration
	dateLayout string
	logger     *zap.Logger
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(a *Aggregator) {
		a.logger = l
	}
}

// WithHTTPClient replaces the guarded HTTP client
func WithHTTPClient(c *outbound.Client) Option {
	return func(a *Aggregator) {
		a.client = c
	}
}

// NewAggregator validates the source configuration against the guard
func NewAggregator(cfg Config, opts ...Option) (*Aggregator, error) {
	if len(cfg.Sources) == 0 {
		return nil, errors.New("at least one member data source is required")
	}
	a := &Aggregator{
		sources:    cfg.Sources,
		timeout:    cfg.Timeout,
		dateLayout: cfg.DateLayout,
		logger:     zap.NewNop(),
	}
	if a.timeout <= 0 {
		a.timeout = defaultTimeout
	}
	if a.dateLayout == "" {
		a.dateLayout = defaultDateLayout
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.client == nil {
		a.client = outbound.NewClient("member_data", outbound.NewGuard(cfg.AllowedHosts...), a.timeout, outbound.WithLogger(a.logger))
	}

	seen := make(map[string]bool, len(cfg.Sources))
	for _, s := range cfg.Sources {
		if s.Name == "" || seen[s.Name] {
			return nil, fmt.Errorf("member data source name %q is empty or duplicated", s.Name)
		}
		seen[s.Name] = true
		if !strings.Contains(s.Path, "{id}") {
			return nil, fmt.Errorf("member data source %s: path must contain {id}", s.Name)
		}
		if err := a.client.Guard().Check(s.BaseURL); err != nil {
			return nil, fmt.Errorf("member data source %s rejected: %w", s.Name, errors.Unwrap(err))
		}
	}
	return a, nil
}

// Aggregate fetches the member from every source and returns catalog key to
// formatted value. A source answering 404 contributes nothing; any other
// failure fails the whole aggregation. If no source knows the member the
// aggregation fails as well.
func (a *Aggregator) Aggregate(ctx context.Context, memberID string, catalog communication.FieldCatalog) (map[string]string, error) {
	id, ok := communication.SanitizeRecordID(memberID)
	if !ok {
		return nil, communication.ErrInvalidIdentifier
	}
	log := logger.L(ctx, a.logger).With(zap.String("member_id", id))

	docs := make([]any, len(a.sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range a.sources {
		g.Go(func() error {
			doc, err := a.fetch(gctx, src, id)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("Member data aggregation failed", zap.Error(err))
		return nil, communication.Failure(communication.ErrUpstreamDataUnavailable, err)
	}

	bySource := make(map[string]any, len(a.sources))
	for i, src := range a.sources {
		if docs[i] == nil {
			log.Warn("Member not found in source", zap.String("source", src.Name))
			continue
		}
		bySource[src.Name] = docs[i]
	}
	if len(bySource) == 0 {
		return nil, communication.Failure(communication.ErrUpstreamDataUnavailable, errors.New("member not found in any source"))
	}

	return project(bySource, catalog, a.dateLayout, log), nil
}

// fetch returns the decoded body, or nil when the source has no such member
func (a *Aggregator) fetch(ctx context.Context, src Source, id string) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	target := strings.TrimSuffix(src.BaseURL, "/") + strings.ReplaceAll(src.Path, "{id}", url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", src.Name, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Name, err)
	}
	defer resp.Body.Close()

	a.logger.Debug("Member source responded",
		zap.String("source", src.Name),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%s: unexpected status %d", src.Name, resp.StatusCode)
	}

	var doc any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%s: decode body: %w", src.Name, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}
