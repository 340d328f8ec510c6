package store

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

	"github.com/cenkalti/backoff/v4"
	"github.com/go-logr/logr"
	"github.com/sony/gobreaker"

	"github.com/oakwood-commons/qbar/internal/query"
)

// APIPath is the record API route served by qbar serve.
const APIPath = "/api"

// Response is the JSON body of the record API.
type Response struct {
	FilterType     string         `json:"filterType"`
	FilterKey      string         `json:"filterKey"`
	FilterOperator string         `json:"filterOperator"`
	FilterValue    string         `json:"filterValue"`
	Items          []query.Record `json:"items"`
}

// StatusError reports a non-2xx answer from the record API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("record api: %s", http.StatusText(e.Code))
	}
	return fmt.Sprintf("record api: %s: %s", http.StatusText(e.Code), e.Body)
}

// clientError reports whether err is a 4xx answer. Those are neither retried
// nor counted against the breaker.
func clientError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code >= 400 && se.Code < 500
}

// HTTPConfig configures an HTTP source.
type HTTPConfig struct {
	BaseURL         string
	Timeout         time.Duration // per attempt
	Retries         uint64        // extra attempts after the first
	BreakerFailures uint32        // consecutive failures that open the breaker
	BreakerTimeout  time.Duration // how long the breaker stays open
	Client          *http.Client
}

// HTTP queries a remote record API. Transient failures are retried with
// exponential backoff; a circuit breaker stops hammering a backend that keeps
// failing.
type HTTP struct {
	base    *url.URL
	client  *http.Client
	timeout time.Duration
	retries uint64
	breaker *gobreaker.CircuitBreaker
	log     logr.Logger
}

// NewHTTP validates cfg and returns a source.
func NewHTTP(cfg HTTPConfig, log logr.Logger) (*HTTP, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("record api url is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("record api url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("record api url %q: scheme must be http or https", cfg.BaseURL)
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	h := &HTTP{
		base:    base,
		client:  client,
		timeout: cfg.Timeout,
		retries: cfg.Retries,
		log:     log,
	}
	h.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "record-api",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || clientError(err) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return h, nil
}

// Endpoint returns the request URL for p.
func (h *HTTP) Endpoint(p query.Params) string {
	u := *h.base
	u.Path = strings.TrimSuffix(u.Path, "/") + APIPath
	v := url.Values{}
	v.Set("filterType", p.FilterType)
	v.Set("filterKey", p.FilterKey)
	v.Set("filterOperator", p.FilterOperator.String())
	v.Set("filterValue", p.FilterValue)
	v.Set("search", p.Search)
	u.RawQuery = v.Encode()
	return u.String()
}

// Search implements Source.
func (h *HTTP) Search(ctx context.Context, p query.Params) ([]query.Record, error) {
	endpoint := h.Endpoint(p)
	var resp *Response

	op := func() error {
		v, err := h.breaker.Execute(func() (interface{}, error) {
			return h.fetch(ctx, endpoint)
		})
		if err != nil {
			if ctx.Err() != nil || clientError(err) ||
				errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(err)
			}
			return err
		}
		resp = v.(*Response)
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, h.retries), ctx)

	err := backoff.RetryNotify(op, policy, func(err error, wait time.Duration) {
		h.log.V(1).Info("retrying record api", "error", err.Error(), "wait", wait.String())
	})
	if err != nil {
		return nil, err
	}
	for i := range resp.Items {
		resp.Items[i].Type = p.FilterType
	}
	if resp.Items == nil {
		resp.Items = []query.Record{}
	}
	return resp.Items, nil
}

func (h *HTTP) fetch(ctx context.Context, endpoint string) (*Response, error) {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	res, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, &StatusError{Code: res.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	var out Response
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode record api response: %w", err)
	}
	return &out, nil
}
