package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/render"
	"github.com/shopspring/decimal"

	"salary-import/internal/config"
	"salary-import/internal/storage"
)

const (
	workersPath      = "/api/workers/"
	processesPath    = "/api/processes"
	specModelsPath   = "/api/specmodels/"
	wageLogBatchPath = "/api/wage_logs/batch"
	wageLogQueryPath = "/api/wage_logs/query"

	IdempotencyHeader = "Idempotency-Key"
)

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s: status %d: %s", e.Endpoint, e.Code, e.Body)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(cfg config.Backend) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// NewWithHTTPClient is used by tests to point the client at an httptest server.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

type workerDTO struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Process *struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"process"`
}

func (c *Client) GetWorkers(ctx context.Context) ([]storage.WorkerRef, error) {
	const op = "backend.GetWorkers"

	var resp struct {
		Workers []workerDTO `json:"workers"`
	}
	if err := c.getJSON(ctx, workersPath, nil, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	workers := make([]storage.WorkerRef, 0, len(resp.Workers))
	for _, w := range resp.Workers {
		ref := storage.WorkerRef{ID: w.ID, Name: w.Name}
		if w.Process != nil {
			ref.ProcessID = w.Process.ID
		}
		workers = append(workers, ref)
	}

	return workers, nil
}

func (c *Client) GetProcesses(ctx context.Context) ([]storage.ProcessRef, error) {
	const op = "backend.GetProcesses"

	var resp struct {
		Processes []storage.ProcessRef `json:"processes"`
	}
	if err := c.getJSON(ctx, processesPath, nil, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return resp.Processes, nil
}

// price arrives either as a JSON number or as a numeric string.
type specModelDTO struct {
	ID          int64           `json:"id"`
	ProcessName string          `json:"process_name"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	ProcessID   int64           `json:"process_id"`
}

func (c *Client) GetSpecPrices(ctx context.Context) ([]storage.PriceRef, error) {
	const op = "backend.GetSpecPrices"

	var resp struct {
		SpecModels []specModelDTO `json:"specModels"`
	}
	if err := c.getJSON(ctx, specModelsPath, nil, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	prices := make([]storage.PriceRef, 0, len(resp.SpecModels))
	for _, s := range resp.SpecModels {
		prices = append(prices, storage.PriceRef{
			ID:          s.ID,
			ProcessName: s.ProcessName,
			SpecName:    s.Name,
			Price:       s.Price,
			ProcessID:   s.ProcessID,
		})
	}

	return prices, nil
}

// BatchCreateWageLogs posts one chunk. The idempotency key lets an
// upsert-aware backend drop a chunk it has already stored.
func (c *Client) BatchCreateWageLogs(ctx context.Context, idempotencyKey string, records []storage.WageLogRecord) error {
	const op = "backend.BatchCreateWageLogs"

	body, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", op, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, wageLogBatchPath, nil, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set(IdempotencyHeader, idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(wageLogBatchPath, resp); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

func (c *Client) QueryWageLogs(ctx context.Context, filter storage.WageLogFilter) ([]storage.WageLog, error) {
	const op = "backend.QueryWageLogs"

	q := url.Values{}
	if filter.StartDate != "" {
		q.Set("start_date", filter.StartDate)
	}
	if filter.EndDate != "" {
		q.Set("end_date", filter.EndDate)
	}
	if filter.WorkerID != 0 {
		q.Set("worker_id", strconv.FormatInt(filter.WorkerID, 10))
	}
	if filter.ProcessID != 0 {
		q.Set("process_id", strconv.FormatInt(filter.ProcessID, 10))
	}

	var resp struct {
		WageLogs []storage.WageLog `json:"wage_logs"`
		Total    int               `json:"total"`
	}
	if err := c.getJSON(ctx, wageLogQueryPath, q, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return resp.WageLogs, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, v interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(path, resp); err != nil {
		return err
	}

	if err := render.DecodeJSON(resp.Body, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}

	// a token forwarded from the dashboard wins over the configured one
	if token := TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", token)
	} else if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}

	return req, nil
}

func checkStatus(endpoint string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	return &StatusError{
		Endpoint: endpoint,
		Code:     resp.StatusCode,
		Body:     strings.TrimSpace(string(body)),
	}
}
