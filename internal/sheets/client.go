// Package sheets retrieves the operational source tables from Google
// Sheets CSV exports. Fetched snapshots are held in a time-bounded cache;
// a retrieval failure degrades that one source to an empty table and never
// fails the refresh cycle.
package sheets

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/dairyops/dairytrack-go/internal/conf"
	"github.com/dairyops/dairytrack-go/internal/errors"
	"github.com/dairyops/dairytrack-go/internal/logging"
	"github.com/dairyops/dairytrack-go/internal/observability/metrics"
	"github.com/dairyops/dairytrack-go/internal/records"
)

// Package-level logger specific to the sheets service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar) // Dynamic level control
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "sheets.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "sheets", serviceLevelVar)
	if err != nil {
		log.Printf("FATAL: Failed to initialize sheets file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "sheets")
		closeLogger = func() error { return nil }
	}
}

// Config holds the client configuration, mirroring conf.SheetsSettings.
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	CacheTTL        time.Duration
	TimestampColumn string
}

// DefaultConfig returns the default client configuration
func DefaultConfig() Config {
	return Config{
		BaseURL:         "https://docs.google.com/spreadsheets/d",
		Timeout:         30 * time.Second,
		CacheTTL:        600 * time.Second,
		TimestampColumn: "Timestamp",
	}
}

// ConfigFromSettings builds a client Config from the application settings.
func ConfigFromSettings(s *conf.SheetsSettings) Config {
	cfg := Config{
		BaseURL:         s.BaseURL,
		Timeout:         s.Timeout,
		CacheTTL:        s.CacheTTL,
		TimestampColumn: s.TimestampColumn,
	}
	return cfg
}

// Client fetches source tables and caches immutable snapshots per source.
type Client struct {
	config     Config
	httpClient *http.Client
	cache      *cache.Cache
	metrics    *metrics.DairyMetrics
}

// NewClient creates a new sheets client
func NewClient(config Config, dairyMetrics *metrics.DairyMetrics) *Client {
	defaults := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = defaults.CacheTTL
	}
	if config.TimestampColumn == "" {
		config.TimestampColumn = defaults.TimestampColumn
	}

	client := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		cache:   cache.New(config.CacheTTL, config.CacheTTL*2),
		metrics: dairyMetrics,
	}

	logger.Info("sheets client initialized",
		"base_url", config.BaseURL,
		"cache_ttl", config.CacheTTL,
		"timeout", config.Timeout)

	return client
}

// HTTPClient exposes the underlying HTTP client so tests can attach
// transport mocks.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// sourceURL builds the CSV export URL for one source.
func (c *Client) sourceURL(src conf.SheetSource) string {
	return fmt.Sprintf("%s/%s/gviz/tq?tqx=out:csv&sheet=%s",
		c.config.BaseURL, url.PathEscape(src.ID), url.QueryEscape(src.Sheet))
}

func cacheKey(src conf.SheetSource) string {
	return src.ID + "/" + src.Sheet
}

// FetchTable retrieves one source table, serving it from the snapshot
// cache when fresh. The configured audit timestamp column is stripped
// before the table is cached. On failure an empty table is returned along
// with the error; callers degrade that source and continue.
func (c *Client) FetchTable(ctx context.Context, src conf.SheetSource) (records.Table, error) {
	key := cacheKey(src)
	if cached, found := c.cache.Get(key); found {
		c.metrics.RecordCacheHit(key)
		logger.Debug("serving table from cache", "source", key)
		return cached.(records.Table), nil
	}
	c.metrics.RecordCacheMiss(key)

	start := time.Now()
	table, err := c.fetch(ctx, src)
	c.metrics.RecordSheetFetchDuration(key, time.Since(start))
	if err != nil {
		c.metrics.RecordSheetFetch(key, "error")
		c.metrics.RecordSheetFetchError(key, errorType(err))
		logger.Error("sheet fetch failed", "source", key, "error", err)
		return records.Table{}, err
	}
	c.metrics.RecordSheetFetch(key, "success")

	table.DropColumn(c.config.TimestampColumn)
	c.cache.Set(key, table, cache.DefaultExpiration)
	logger.Info("sheet fetched", "source", key, "rows", len(table.Rows), "columns", len(table.Columns))
	return table, nil
}

func (c *Client) fetch(ctx context.Context, src conf.SheetSource) (records.Table, error) {
	if src.ID == "" {
		return records.Table{}, errors.Newf("sheet source has no spreadsheet ID configured").
			Category(errors.CategoryConfiguration).
			Component("sheets").
			Context("sheet", src.Sheet).
			Build()
	}

	reqURL := c.sourceURL(src)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return records.Table{}, errors.New(err).
			Category(errors.CategoryHTTP).
			Component("sheets").
			Context("url", reqURL).
			Build()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return records.Table{}, errors.New(err).
			Category(errors.CategoryNetwork).
			Component("sheets").
			Context("source", cacheKey(src)).
			Build()
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warn("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return records.Table{}, errors.Newf("sheet export returned status %d", resp.StatusCode).
			Category(errors.CategorySheetFetch).
			Component("sheets").
			Context("source", cacheKey(src)).
			Context("status_code", resp.StatusCode).
			Build()
	}

	table, err := parseCSV(resp.Body)
	if err != nil {
		return records.Table{}, errors.New(err).
			Category(errors.CategoryCSVParsing).
			Component("sheets").
			Context("source", cacheKey(src)).
			Build()
	}
	return table, nil
}

// parseCSV reads an exported sheet into a table. The first record is the
// header; short rows are padded with empty cells and overlong rows are
// truncated to the header width.
func parseCSV(r io.Reader) (records.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			// An empty export is an empty table, not an error.
			return records.Table{}, nil
		}
		return records.Table{}, fmt.Errorf("reading header: %w", err)
	}

	table := records.Table{Columns: header}
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return records.Table{}, fmt.Errorf("reading row %d: %w", len(table.Rows)+2, err)
		}
		row := make(records.Row, len(header))
		for i, col := range header {
			if i < len(fields) {
				row[col] = fields[i]
			} else {
				row[col] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// errorType maps a fetch error to its metrics label.
func errorType(err error) string {
	var enhanced *errors.EnhancedError
	if errors.As(err, &enhanced) {
		return string(enhanced.Category)
	}
	return "unknown"
}

// Flush drops every cached snapshot. Used by the manual-refresh signal.
func (c *Client) Flush() {
	c.cache.Flush()
	logger.Info("snapshot cache flushed")
}

// Close cleans up client resources
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			log.Printf("Failed to close sheets log file: %v", err)
		}
	}
}
