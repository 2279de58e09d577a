package catalog

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
)

// Resource defines the remote operations the rest of the application needs
// from the inventory API. This interface is implemented by *Client and can
// be used for testing.
type Resource interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int) (Product, error)
	Create(ctx context.Context, fields Fields, image *FileUpload) (Product, error)
	Update(ctx context.Context, id int, fields Fields, image *FileUpload) (Product, error)
	Remove(ctx context.Context, id int) error
	SwapImage(ctx context.Context, id int, image FileUpload) (string, error)
	Categories(ctx context.Context) ([]Category, error)
}

// Ensure Client implements Resource at compile time.
var _ Resource = (*Client)(nil)

// Client talks to the storefront inventory HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultAPIBase   = "127.0.0.1:8000"
	defaultUserAgent = "vitrina/0.1"
	requestTimeout   = 10 * time.Second
)

// NewClient builds a Client for the provided apiBase host:port value.
// A zero timeout uses the default client-side deadline.
func NewClient(apiBase string, timeout time.Duration) (*Client, error) {
	base, err := parseBaseURL(apiBase)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = requestTimeout
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: timeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// List retrieves the full product collection.
func (c *Client) List(ctx context.Context) ([]Product, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload []Product
	if err := c.doJSON(ctx, http.MethodGet, "/api/productos/view/", &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Get retrieves a single product by id.
func (c *Client) Get(ctx context.Context, id int) (Product, error) {
	if c == nil {
		return Product{}, fmt.Errorf("client is nil")
	}
	var payload Product
	path := fmt.Sprintf("/api/productos/view/%d/", id)
	if err := c.doJSON(ctx, http.MethodGet, path, &payload); err != nil {
		return Product{}, err
	}
	return payload, nil
}

// Create submits a new product as multipart form data. The image part is
// attached only when present.
func (c *Client) Create(ctx context.Context, fields Fields, image *FileUpload) (Product, error) {
	if c == nil {
		return Product{}, fmt.Errorf("client is nil")
	}
	return c.submit(ctx, http.MethodPost, "/api/productos/", fields, image)
}

// Update replaces a product's fields via multipart PUT.
func (c *Client) Update(ctx context.Context, id int, fields Fields, image *FileUpload) (Product, error) {
	if c == nil {
		return Product{}, fmt.Errorf("client is nil")
	}
	path := fmt.Sprintf("/api/productos/post/%d/", id)
	return c.submit(ctx, http.MethodPut, path, fields, image)
}

// Remove deletes a product. A 404 means the target was already gone and is
// treated as success, making the delete idempotent.
func (c *Client) Remove(ctx context.Context, id int) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	path := fmt.Sprintf("/api/productos/%d/", id)
	err := c.doJSON(ctx, http.MethodDelete, path, nil)
	if IsNotFound(err) {
		return nil
	}
	return err
}

// swapResponse mirrors the image swap endpoint payload.
type swapResponse struct {
	Correcto bool   `json:"Correcto"`
	URLFoto  string `json:"urlfoto"`
	Error    string `json:"error"`
}

// SwapImage uploads a replacement image for an existing product without
// touching its other fields and returns the new remote URL.
func (c *Client) SwapImage(ctx context.Context, id int, image FileUpload) (string, error) {
	if c == nil {
		return "", fmt.Errorf("client is nil")
	}
	body, contentType, err := encodeMultipart(nil, "imagen", &image)
	if err != nil {
		return "", &Error{Kind: KindUpload, Message: err.Error(), cause: err}
	}
	path := fmt.Sprintf("/api/productos/change/%d/", id)
	var payload swapResponse
	if err := c.doBody(ctx, http.MethodPost, path, body, contentType, &payload); err != nil {
		var ce *Error
		if errors.As(err, &ce) && ce.Kind == KindValidation {
			ce.Kind = KindUpload
		}
		return "", err
	}
	if !payload.Correcto || payload.URLFoto == "" {
		msg := payload.Error
		if msg == "" {
			msg = "image upload rejected"
		}
		return "", &Error{Kind: KindUpload, Message: msg}
	}
	return payload.URLFoto, nil
}

// Categories retrieves the category choices for the product form.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload []Category
	if err := c.doJSON(ctx, http.MethodGet, "/api/categorias/", &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) submit(ctx context.Context, method, path string, fields Fields, image *FileUpload) (Product, error) {
	body, contentType, err := encodeMultipart(fields.formValues(), "urlfoto", image)
	if err != nil {
		return Product{}, &Error{Kind: KindValidation, Message: err.Error(), cause: err}
	}
	var payload Product
	if err := c.doBody(ctx, method, path, body, contentType, &payload); err != nil {
		return Product{}, err
	}
	return payload, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, dest any) error {
	return c.doBody(ctx, method, path, nil, "", dest)
}

func (c *Client) doBody(ctx context.Context, method, path string, body io.Reader, contentType string, dest any) error {
	rel := &url.URL{Path: path}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return networkErr(fmt.Errorf("execute request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		return decodeAPIError(resp.StatusCode, raw)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return networkErr(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func parseBaseURL(apiBase string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBase)
	if trimmed == "" {
		trimmed = defaultAPIBase
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base %q: %w", apiBase, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
