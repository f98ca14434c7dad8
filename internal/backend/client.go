// Package backend talks to the pipeline routing service: route generation,
// corridor evaluation, report download and the session endpoints around them.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"piperoute/internal/geo"
)

// DefaultDesktopURL is where the desktop build of the backend listens
const DefaultDesktopURL = "http://127.0.0.1:5000"

// RequestIDHeader carries the per-request correlation id
const RequestIDHeader = "X-Request-ID"

// maxErrorBody bounds how much of a failed response is kept for logs
const maxErrorBody = 512

// Mode selects the routing network for a generated route
type Mode string

const (
	ModeRoute Mode = "route"
	ModeRail  Mode = "rail"
)

// RouteRequest is the /token request body
type RouteRequest struct {
	Start geo.Coordinate `json:"s"`
	End   geo.Coordinate `json:"e"`
	Mode  Mode           `json:"mode"`
}

// RouteResult is a generated route as an ordered polyline
type RouteResult struct {
	Points []geo.Coordinate `json:"route"`
}

// Shape types returned by corridor evaluation
const (
	ShapePolygon    = "Polygon"
	ShapeLineString = "LineString"
)

// EvaluationResult is the classified shape of an uploaded corridor, one
// coordinate list per feature in the upload
type EvaluationResult struct {
	ShapeType string
	Parts     [][]geo.Coordinate
}

type evaluationResponse struct {
	Array json.RawMessage `json:"array"`
	Typ   string          `json:"typ"`
}

// Upload is one file sent to /uploads
type Upload struct {
	Name string
	Path string
}

// Report is a downloaded report artifact
type Report struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Profile describes the backend build, served by /profile
type Profile struct {
	Name  string `json:"name"`
	About string `json:"about"`
}

// ResolveBase picks the backend base URL once at startup. The desktop build
// always talks to its local process; the web build needs an explicit URL.
func ResolveBase(desktop bool, webURL, desktopURL string) (string, error) {
	if desktop {
		if desktopURL == "" {
			desktopURL = DefaultDesktopURL
		}
		return desktopURL, nil
	}
	if webURL == "" {
		return "", errors.New("backend URL is required outside desktop mode")
	}
	return webURL, nil
}

// Client is an HTTP client for one backend. Its base URL never changes.
type Client struct {
	base       *url.URL
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets a per-request timeout; zero disables it
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the HTTP client. The caller's client should carry a
// cookie jar if session endpoints are used.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the backend at baseURL. Cookies set by /gen_uid are
// kept in a jar and replayed on later calls.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q: scheme and host required", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		base:       base,
		httpClient: &http.Client{Jar: jar},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.base.String()
}

// GenerateRoute posts the endpoints to /token and returns the route polyline
func (c *Client) GenerateRoute(ctx context.Context, req RouteRequest) (*RouteResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &ServerError{Op: "generate route", Err: err}
	}

	resp, err := c.do(ctx, "generate route", http.MethodPost, "/token", bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result RouteResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ServerError{Op: "generate route", Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	return &result, nil
}

// EvaluateCorridor uploads files as multipart fields file0, file1, ... and
// returns the evaluated shape. File contents are not inspected.
func (c *Client) EvaluateCorridor(ctx context.Context, uploads []Upload) (*EvaluationResult, error) {
	const op = "evaluate corridor"

	body, contentType, err := multipartBody(uploads)
	if err != nil {
		return nil, &ServerError{Op: op, Err: err}
	}

	resp, err := c.do(ctx, op, http.MethodPost, "/uploads", body, contentType)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var raw evaluationResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &ServerError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	parts, err := decodeParts(raw.Array)
	if err != nil {
		return nil, &ServerError{Op: op, Status: resp.StatusCode, Err: err}
	}

	return &EvaluationResult{ShapeType: raw.Typ, Parts: parts}, nil
}

// decodeParts accepts one coordinate list per feature or a single flat list
func decodeParts(data json.RawMessage) ([][]geo.Coordinate, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var nested [][]geo.Coordinate
	if err := json.Unmarshal(data, &nested); err == nil {
		return nested, nil
	}

	var flat []geo.Coordinate
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("decode array: %w", err)
	}
	return [][]geo.Coordinate{flat}, nil
}

func multipartBody(uploads []Upload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for i, up := range uploads {
		f, err := os.Open(up.Path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open upload: %w", err)
		}

		part, err := w.CreateFormFile(fmt.Sprintf("file%d", i), up.Name)
		if err == nil {
			_, err = io.Copy(part, f)
		}
		f.Close()
		if err != nil {
			return nil, "", fmt.Errorf("failed to write upload %s: %w", up.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// DownloadReport fetches the report for the current session. ext must be .zip
// or .pdf.
func (c *Client) DownloadReport(ctx context.Context, ext string) (*Report, error) {
	const op = "download report"

	if ext != ".zip" && ext != ".pdf" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}

	body, err := json.Marshal(map[string]string{"extension": ext})
	if err != nil {
		return nil, &ServerError{Op: op, Err: err}
	}

	resp, err := c.do(ctx, op, http.MethodPost, "/download_report", bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ServerError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	return &Report{
		Filename:    ReportFilename(resp.Header.Get("Content-Disposition"), ext),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

// Help asks the backend to open its documentation
func (c *Client) Help(ctx context.Context) error {
	resp, err := c.do(ctx, "help", http.MethodPost, "/help", nil, "")
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

// OpenSession calls /gen_uid so the backend assigns this client a session cookie
func (c *Client) OpenSession(ctx context.Context) error {
	resp, err := c.do(ctx, "open session", http.MethodGet, "/gen_uid", nil, "")
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

// CloseSession tells the backend the client is going away
func (c *Client) CloseSession(ctx context.Context) error {
	resp, err := c.do(ctx, "close session", http.MethodGet, "/window_close", nil, "")
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

// Profile returns the backend's name and description
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	resp, err := c.do(ctx, "profile", http.MethodGet, "/profile", nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, &ServerError{Op: "profile", Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return &p, nil
}

// do sends a request and returns the response only for a 2xx status. Every
// other outcome is a *ServerError.
func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	u := c.base.JoinPath(path)
	requestID := uuid.NewString()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, &ServerError{Op: op, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().
			Err(err).
			Str("request_id", requestID).
			Str("method", method).
			Str("path", path).
			Dur("duration", time.Since(start)).
			Msg("Backend request failed")
		return nil, &ServerError{Op: op, Err: err}
	}

	log.Info().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()

		var detail error
		if s := strings.TrimSpace(string(snippet)); s != "" {
			detail = errors.New(s)
		}
		return nil, &ServerError{Op: op, Status: resp.StatusCode, Err: detail}
	}

	return resp, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
