package outbound

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// BlockedRequests counts outbound requests rejected by a guard
var BlockedRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "commhub",
	Name:      "outbound_requests_blocked_total",
	Help:      "Outbound HTTP requests rejected by the URL guard.",
}, []string{"client"})

// Client is an http.Client that runs every request, including redirects,
// through a Guard before it leaves the process.
type Client struct {
	name   string
	guard  *Guard
	http   *http.Client
	logger *zap.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTransport replaces the underlying round tripper
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.http.Transport = rt
	}
}

// NewClient creates a guarded client with the given per-request timeout
func NewClient(name string, guard *Guard, timeout time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		name:   name,
		guard:  guard,
		http:   &http.Client{Timeout: timeout},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 5 {
			return errors.New("stopped after 5 redirects")
		}
		return c.check(req)
	}
	return c
}

// Do validates the request URL and sends it. Non-2xx statuses are returned
// as responses, not errors.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if err := c.check(req); err != nil {
		return nil, err
	}
	return c.http.Do(req)
}

// Guard returns the client's guard
func (c *Client) Guard() *Guard {
	return c.guard
}

func (c *Client) check(req *http.Request) error {
	if err := c.guard.CheckURL(req.URL); err != nil {
		BlockedRequests.WithLabelValues(c.name).Inc()
		c.logger.Warn("Outbound request blocked",
			zap.String("client", c.name),
			zap.String("host", req.URL.Host),
			zap.Error(errors.Unwrap(err)),
		)
		return err
	}
	return nil
}
