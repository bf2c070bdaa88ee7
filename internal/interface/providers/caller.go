// Package providers holds the adapters for the external flight-data APIs.
// Each adapter turns provider payloads into entity.Schedule records and
// drops upstream records that lack a mandatory field.
package providers

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

	"wanderlust-service/internal/domain/errs"
	"wanderlust-service/internal/domain/provider"
	"wanderlust-service/pkg/logger"
	"wanderlust-service/pkg/metrics"
)

// DefaultTimeout bounds every provider round trip
const DefaultTimeout = 15 * time.Second

// Options are shared by every adapter constructor
type Options struct {
	BaseURL string
	Timeout time.Duration
	// Client overrides the HTTP client, e.g. an OAuth2 authorized one
	Client  *http.Client
	Metrics *metrics.Metrics
	Logger  logger.Logger
}

// caller performs authenticated GET requests and decodes JSON
type caller struct {
	name    string
	baseURL string
	client  *http.Client
	headers http.Header
	params  url.Values
	metrics *metrics.Metrics
	logger  logger.Logger
}

func newCaller(name string, opts Options, headers http.Header, params url.Values) *caller {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	base := opts.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &caller{
		name:    name,
		baseURL: base,
		client:  client,
		headers: headers,
		params:  params,
		metrics: opts.Metrics,
		logger:  opts.Logger.With("provider", name),
	}
}

// getJSON issues GET baseURL+path and decodes the body into out. A 204
// leaves out untouched. Transport failures, timeouts, non-success statuses
// and undecodable bodies wrap errs.ErrProviderUnavailable; a cancelled
// context is returned as is.
func (c *caller) getJSON(ctx context.Context, op, path string, query url.Values, out interface{}) error {
	start := time.Now()
	outcome := "ok"
	defer func() {
		c.metrics.ObserveProviderCall(c.name, op, outcome, time.Since(start))
	}()

	endpoint := c.baseURL + strings.TrimPrefix(path, "/")
	values := url.Values{}
	for k, v := range c.params {
		values[k] = v
	}
	for k, v := range query {
		values[k] = v
	}
	if len(values) > 0 {
		endpoint += "?" + values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		outcome = "error"
		return fmt.Errorf("%w: failed to create request: %v", errs.ErrInvalidInput, err)
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Calling provider", "operation", op, "path", path)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			outcome = "cancelled"
			return ctxErr
		}
		outcome = "unavailable"
		c.logger.Warn("Provider request failed", "operation", op, "error", err)
		return fmt.Errorf("%s %s: %w: %v", c.name, op, errs.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		outcome = "empty"
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = "unavailable"
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("Provider returned error status", "operation", op, "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("%s %s: %w: status %d", c.name, op, errs.ErrProviderUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			outcome = "empty"
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			outcome = "cancelled"
			return ctxErr
		}
		outcome = "unavailable"
		return fmt.Errorf("%s %s: %w: failed to decode response: %v", c.name, op, errs.ErrProviderUnavailable, err)
	}
	return nil
}

// flexFloat decodes numbers that some providers send as strings
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	var v float64
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return fmt.Errorf("not a number: %s", b)
	}
	*f = flexFloat(v)
	return nil
}

// flexString decodes strings that some providers send as bare numbers
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	*s = flexString(strings.TrimSpace(string(b)))
	return nil
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// normalizeFlightID strips spaces, "LH 754" becomes "LH754"
func normalizeFlightID(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}

func validAirportCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

var (
	_ provider.Provider          = (*AeroDataBox)(nil)
	_ provider.IPAirportSearcher = (*AeroDataBox)(nil)
	_ provider.Provider          = (*Amadeus)(nil)
	_ provider.Provider          = (*AviationStack)(nil)
	_ provider.CatalogueSource   = (*AviationStack)(nil)
	_ provider.Provider          = (*AirLabs)(nil)
	_ provider.CountrySource     = (*AirLabs)(nil)
)
