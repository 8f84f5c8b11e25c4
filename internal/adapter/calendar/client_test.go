package calendar

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

const sheet = "date,available,ordered\n" +
	"\"March 1, 2025\",5,3\n" +
	"\"March 2, 2025 \",8\n" +
	"March 3,n/a\n" +
	",4\n"

func TestNewHTTPClientValidatesURL(t *testing.T) {
	if _, err := NewHTTPClient("://bad-url", time.Second, testLogger()); err == nil {
		t.Fatal("expected error for invalid url")
	}
	if _, err := NewHTTPClient("/relative", time.Second, testLogger()); err == nil {
		t.Fatal("expected error for relative url")
	}
	client, err := NewHTTPClient("http://example.com/sheet", 0, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.httpClient.Timeout != defaultTimeout {
		t.Fatalf("expected default timeout, got %s", client.httpClient.Timeout)
	}
}

func TestHTTPClientEntries(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, sheet)
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL+"/pub?output=csv", time.Second, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	client.now = func() time.Time { return time.Unix(0, 42) }

	entries, err := client.Entries(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", entries)
	}
	if entries[0].Date != "March 1, 2025" || entries[0].Limit != 5 {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Date != "March 2, 2025" || entries[1].Limit != 8 {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
	if !strings.Contains(gotQuery, "cb=42") || !strings.Contains(gotQuery, "output=csv") {
		t.Fatalf("expected cache buster and original query, got %q", gotQuery)
	}
}

func TestHTTPClientEntriesUpstreamFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL, time.Second, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := client.Entries(context.Background()); !errors.Is(err, domainErrors.ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream error, got %v", err)
	}

	srv.Close()
	if _, err := client.Entries(context.Background()); !errors.Is(err, domainErrors.ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream error for closed server, got %v", err)
	}
}

func TestHTTPClientEntriesMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "date,available\n\"unterminated,5\n")
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL, time.Second, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := client.Entries(context.Background()); !errors.Is(err, domainErrors.ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestParseEmptyCalendar(t *testing.T) {
	entries, err := Parse(strings.NewReader(""))
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty result, got %v err=%v", entries, err)
	}

	entries, err = Parse(strings.NewReader("date,available\n"))
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected header-only calendar to be empty, got %v err=%v", entries, err)
	}
}
