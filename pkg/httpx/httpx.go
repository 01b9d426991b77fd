package httpx

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// Doer is what upstream API clients need from an HTTP client.
//
//go:generate mockgen -source=httpx.go -destination=mocks/mock_doer.go -package=mocks Doer
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

var _ Doer = (*Client)(nil)

// errServerStatus marks a 5xx response as a failure for the breaker without hiding the response.
var errServerStatus = errors.New("upstream server error")

// ErrOpen is returned while the breaker refuses calls to a failing upstream.
var ErrOpen = gobreaker.ErrOpenState

// Client is a small wrapper around http.Client with sane defaults and a circuit breaker
// per upstream.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	Headers   map[string]string

	cb *gobreaker.CircuitBreaker
}

type Option func(*gobreaker.Settings)

// WithMaxFailures opens the breaker after n consecutive failed calls.
func WithMaxFailures(n uint32) Option {
	return func(s *gobreaker.Settings) {
		s.ReadyToTrip = func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= n
		}
	}
}

// WithOpenTimeout sets how long the breaker stays open before letting a probe through.
func WithOpenTimeout(d time.Duration) Option {
	return func(s *gobreaker.Settings) {
		s.Timeout = d
	}
}

func New(name string, timeout time.Duration, opts ...Option) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 3 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   3 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	settings := gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests > 10 && ratio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				slog.Warn("upstream seems down, stop allowing requests", "upstream", name)
			}
			if from == gobreaker.StateOpen && to == gobreaker.StateHalfOpen {
				slog.Info("checking upstream status", "upstream", name)
			}
			if from == gobreaker.StateHalfOpen && to == gobreaker.StateClosed {
				slog.Info("upstream seems ok, restart allowing requests", "upstream", name)
			}
		},
	}
	for _, opt := range opts {
		opt(&settings)
	}

	return &Client{
		HTTP:      &http.Client{Timeout: timeout, Transport: transport},
		UserAgent: "market-pulse/1.0",
		cb:        gobreaker.NewCircuitBreaker(settings),
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	for k, v := range c.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}

	res, err := c.cb.Execute(func() (interface{}, error) {
		resp, err := c.HTTP.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errServerStatus
		}
		return resp, nil
	})
	if err != nil && !errors.Is(err, errServerStatus) {
		return nil, err
	}
	return res.(*http.Response), nil
}
