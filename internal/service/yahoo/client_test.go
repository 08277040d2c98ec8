package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"StockCast/internal/service/cache"
	xlogger "StockCast/pkg/logger"
)

func testLogger(t *testing.T) *xlogger.Logger {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func TestDailyParsesAndFilters(t *testing.T) {
	// Fri 2024-06-07, Sat 2024-06-08 (weekend), Mon 2024-06-10, plus a
	// row with a null close that must be skipped.
	fri := time.Date(2024, 6, 7, 13, 0, 0, 0, time.UTC).Unix()
	sat := time.Date(2024, 6, 8, 13, 0, 0, 0, time.UTC).Unix()
	mon := time.Date(2024, 6, 10, 13, 0, 0, 0, time.UTC).Unix()
	tue := time.Date(2024, 6, 11, 13, 0, 0, 0, time.UTC).Unix()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/v8/finance/chart/BBAS3.SA" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprintf(w, `{"chart":{"result":[{
			"timestamp":[%d,%d,%d,%d],
			"indicators":{"quote":[{
				"open":[10,11,12,13],
				"high":[10.5,11.5,12.5,13.5],
				"low":[9.5,10.5,11.5,12.5],
				"close":[10.2,11.2,12.2,null],
				"volume":[1000,1100,1200,1300]
			}]}}],"error":null}}`, fri, sat, mon, tue)
	}))
	defer srv.Close()

	feed := New(srv.URL, cache.NewTTLCache(), time.Minute, testLogger(t))

	rows, err := feed.Daily(context.Background(), "BBAS3.SA", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows after filtering, got %d", len(rows))
	}
	if rows[0].Close != 10.2 || rows[1].Close != 12.2 {
		t.Fatalf("unexpected closes %v %v", rows[0].Close, rows[1].Close)
	}
	if rows[0].Date.After(rows[1].Date) {
		t.Fatalf("rows not chronological")
	}

	// Second call inside the TTL must come from cache.
	if _, err := feed.Daily(context.Background(), "BBAS3.SA", 30); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", calls)
	}
}

func TestDailyUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	}))
	defer srv.Close()

	feed := New(srv.URL, cache.NewTTLCache(), time.Minute, testLogger(t))
	if _, err := feed.Daily(context.Background(), "NOPE", 30); err == nil {
		t.Fatalf("expected error")
	}
}
