package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/szytools/discount-label-service/internal/models"
)

const (
	DefaultTimeout = 15 * time.Second

	maxErrorBody = 64 << 10
)

// ErrProductNotFound means the lookup response carried no product record.
var ErrProductNotFound = errors.New("product not found")

// NetworkError is a failed call to the backend. Message holds the
// backend-provided message when the response body had one.
type NetworkError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Status != 0:
		return fmt.Sprintf("%s: backend returned status %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": request failed"
	}
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ScanRequest is the body of a product lookup.
type ScanRequest struct {
	Code     string `json:"code"`
	Outlet   string `json:"outlet"`
	Discount string `json:"discount"`
}

// Client calls the tools backend.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a client for baseURL. A non-positive timeout uses
// DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// ScanProduct looks a code up and returns the normalized product.
func (c *Client) ScanProduct(ctx context.Context, req ScanRequest) (models.ProductDetail, error) {
	var raw map[string]any
	if err := c.do(ctx, "scan product", http.MethodPost, "/scanproduct", req, &raw); err != nil {
		return models.ProductDetail{}, err
	}
	detail, ok := NormalizeResponse(raw)
	if !ok {
		return models.ProductDetail{}, ErrProductNotFound
	}
	return detail, nil
}

// ProductInfo fetches a product by its internal code.
func (c *Client) ProductInfo(ctx context.Context, outlet, internal string) (models.ProductDetail, error) {
	path := fmt.Sprintf("/productinfo/%s/%s/'0'", url.PathEscape(outlet), url.PathEscape(internal))
	var raw map[string]any
	if err := c.do(ctx, "product info", http.MethodGet, path, nil, &raw); err != nil {
		return models.ProductDetail{}, err
	}
	detail, ok := NormalizeResponse(raw)
	if !ok {
		return models.ProductDetail{}, ErrProductNotFound
	}
	return detail, nil
}

// Outlets lists the outlets known to the backend.
func (c *Client) Outlets(ctx context.Context) ([]map[string]any, error) {
	var raw json.RawMessage
	if err := c.do(ctx, "list outlets", http.MethodGet, "/outlet", nil, &raw); err != nil {
		return nil, err
	}

	var wrapped struct {
		Results []map[string]any `json:"results"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Results != nil {
		return wrapped.Results, nil
	}
	var list []map[string]any
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, &NetworkError{Op: "list outlets", Err: fmt.Errorf("decode response: %w", err)}
	}
	return list, nil
}

// CreateDiscount registers a discount with the backend.
func (c *Client) CreateDiscount(ctx context.Context, p models.CreateDiscountPayload) error {
	var resp any
	if err := c.do(ctx, "create discount", http.MethodPost, "/newdiscount", discountWire(p), &resp); err != nil {
		return err
	}
	c.logger.Info("discount registered",
		zap.String("internal", p.Internal),
		zap.String("barcode", p.CodeBarcodeBaru),
		zap.String("outlet", p.Outlet))
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed", zap.String("op", op), zap.Error(err))
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &NetworkError{Op: op, Status: resp.StatusCode, Message: backendMessage(data)}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return &NetworkError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func backendMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	if s, ok := payload.Error.(string); ok {
		return s
	}
	return ""
}

// discountWire sends amounts as JSON numbers, and the outlet as a number when
// it is one.
func discountWire(p models.CreateDiscountPayload) map[string]any {
	num := func(v interface{ String() string }) json.Number {
		return json.Number(v.String())
	}
	var outlet any = p.Outlet
	if n, err := strconv.ParseInt(strings.TrimSpace(p.Outlet), 10, 64); err == nil {
		outlet = n
	}
	return map[string]any{
		"internal":          p.Internal,
		"name_product":      p.NameProduct,
		"code_barcode_lama": p.CodeBarcodeLama,
		"code_barcode_baru": p.CodeBarcodeBaru,
		"retail_price":      num(p.RetailPrice),
		"harga_awal":        num(p.HargaAwal),
		"discount":          num(p.Discount),
		"qty":               num(p.Qty),
		"uomsales":          p.UOMSales,
		"harga_discount":    num(p.HargaDiscount),
		"description":       p.Description,
		"outlet":            outlet,
		"device_id":         p.DeviceID,
	}
}
