package calendar

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

const defaultTimeout = 10 * time.Second

// HTTPClient reads the capacity calendar published as CSV.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// NewHTTPClient creates calendar client. Zero timeout falls back to ten seconds.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse calendar url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("calendar url must be absolute")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		baseURL: parsed,
		logger:  logger,
		now:     time.Now,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

// Entries downloads the calendar. Any transport or status failure is reported
// as ErrUpstreamUnavailable.
func (c *HTTPClient) Entries(ctx context.Context) ([]model.CalendarEntry, error) {
	endpoint := *c.baseURL
	query := endpoint.Query()
	query.Set("cb", strconv.FormatInt(c.now().UnixNano(), 10))
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/csv")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("calendar request failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("fetch calendar: %w: %w", domainErrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Error("calendar request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return nil, fmt.Errorf("calendar error: %s: %w", resp.Status, domainErrors.ErrUpstreamUnavailable)
	}

	entries, err := Parse(resp.Body)
	if err != nil {
		c.logger.Error("calendar payload rejected", slog.String("error", err.Error()))
		return nil, fmt.Errorf("parse calendar: %w: %w", domainErrors.ErrUpstreamUnavailable, err)
	}
	return entries, nil
}

// Parse reads date,limit rows after a header line. Rows without a date or
// with a non-numeric limit are skipped.
func Parse(r io.Reader) ([]model.CalendarEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var entries []model.CalendarEntry
	header := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if header {
			header = false
			continue
		}
		if len(record) < 2 {
			continue
		}
		date := strings.TrimSpace(record[0])
		limit, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if date == "" || err != nil || limit < 0 {
			continue
		}
		entries = append(entries, model.CalendarEntry{Date: date, Limit: limit})
	}
	return entries, nil
}
