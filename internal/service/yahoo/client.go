// Package yahoo implements the DataFeed against the Yahoo Finance chart
// API. The feed is treated as a black box producing daily OHLCV rows.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"StockCast/internal/domain/models"
	drepo "StockCast/internal/domain/repository"
	"StockCast/internal/service/cache"
	xhttp "StockCast/pkg/http"
	xlogger "StockCast/pkg/logger"
	"StockCast/pkg/util"
)

// Client fetches historical daily candles over HTTP. Responses are
// cached so repeated prediction requests within one day do not hammer
// the provider.
type Client struct {
	http     *xhttp.Client
	baseURL  string
	cache    cache.BytesCache
	cacheTTL time.Duration
	logger   *xlogger.Logger
}

// New creates a Yahoo Finance feed client.
func New(baseURL string, c cache.BytesCache, cacheTTL time.Duration, logger *xlogger.Logger) drepo.DataFeed {
	return &Client{
		http:     xhttp.NewClient(xhttp.WithTimeout(15 * time.Second)),
		baseURL:  baseURL,
		cache:    c,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// chartResponse mirrors the subset of the chart API payload we consume.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Daily returns daily OHLCV rows for the ticker covering lookbackDays
// calendar days, chronological and weekend-free. Rows with incomplete
// quote data are skipped.
func (c *Client) Daily(ctx context.Context, ticker string, lookbackDays int) ([]models.OHLCVRow, error) {
	key := fmt.Sprintf("ohlcv:%s:%s:%d", ticker, util.FormatDate(time.Now()), lookbackDays)
	if b, ok, err := c.cache.GetBytes(key); err == nil && ok {
		var rows []models.OHLCVRow
		if err := json.Unmarshal(b, &rows); err == nil {
			return rows, nil
		}
	} else if err != nil {
		c.logger.Warn("feed cache read failed", xlogger.Error(err))
	}

	end := time.Now()
	start := end.AddDate(0, 0, -lookbackDays)

	var payload chartResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, ticker),
		QueryParams: map[string][]string{
			"interval": {"1d"},
			"period1":  {strconv.FormatInt(start.Unix(), 10)},
			"period2":  {strconv.FormatInt(end.Unix(), 10)},
		},
		Headers: map[string]string{"User-Agent": "stockcast/1.0"},
	}, &payload)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ticker, err)
	}

	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("fetch %s: %s: %s", ticker, payload.Chart.Error.Code, payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("fetch %s: empty chart result", ticker)
	}

	result := payload.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	rows := make([]models.OHLCVRow, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) ||
			i >= len(quote.Close) || i >= len(quote.Volume) {
			break
		}
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil ||
			quote.Close[i] == nil || quote.Volume[i] == nil {
			continue
		}
		date := time.Unix(ts, 0).UTC()
		if util.IsWeekend(date) {
			continue
		}
		rows = append(rows, models.OHLCVRow{
			Date:   date,
			Open:   *quote.Open[i],
			High:   *quote.High[i],
			Low:    *quote.Low[i],
			Volume: *quote.Volume[i],
			Close:  *quote.Close[i],
		})
	}

	if b, err := json.Marshal(rows); err == nil {
		if err := c.cache.SetBytes(key, b, c.cacheTTL); err != nil {
			c.logger.Warn("feed cache write failed", xlogger.Error(err))
		}
	}

	return rows, nil
}
