// Package api is the typed HTTP client for the ontology backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/msalah0e/ontoscope/internal/logging"
	"github.com/msalah0e/ontoscope/internal/model"
	"github.com/msalah0e/ontoscope/internal/parallel"
	"golang.org/x/time/rate"
)

// maxErrorBody caps how much of a failed response is kept for logging.
const maxErrorBody = 512

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables throttling
	Burst     int
	UserAgent string
	HTTP      *http.Client
	Logger    *slog.Logger
}

// Client talks to the backend. It is safe for concurrent use.
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	agent   string
	log     *slog.Logger
}

// New creates a client for the API rooted at opts.BaseURL.
func New(opts Options) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if raw == "" {
		return nil, fmt.Errorf("api: base URL is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("api: parse base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api: base URL %q must be http or https", raw)
	}

	hc := opts.HTTP
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	agent := opts.UserAgent
	if agent == "" {
		agent = "ontoscope"
	}

	return &Client{base: base, http: hc, limiter: limiter, agent: agent, log: logger}, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// ─── Ontologies ───

// Ontologies lists loaded ontologies. With withMetadata each entry lacking a
// Source is enriched from /ontologies/{id}/metadata; enrichment failures are
// logged and leave the entry as listed.
func (c *Client) Ontologies(ctx context.Context, withMetadata bool, concurrency int) ([]model.Ontology, error) {
	var list []model.Ontology
	if err := c.getJSON(ctx, "ontologies", c.endpoint(nil, "ontologies"), &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Ontology{}
	}
	if !withMetadata || len(list) == 0 {
		return list, nil
	}

	var tasks []parallel.Task
	for i := range list {
		if list[i].Source != nil || list[i].ID == "" {
			continue
		}
		tasks = append(tasks, parallel.Task{
			Name: list[i].ID,
			Fn: func(ctx context.Context) error {
				meta, err := c.OntologyMetadata(ctx, list[i].ID)
				if err != nil {
					return err
				}
				list[i].Source = meta
				return nil
			},
		})
	}
	for _, r := range parallel.Failed(parallel.Run(ctx, tasks, concurrency)) {
		c.log.Warn("ontology metadata unavailable", "ontology", r.Name, "error", r.Err)
	}
	return list, nil
}

// OntologyMetadata fetches the provenance record of one ontology.
func (c *Client) OntologyMetadata(ctx context.Context, id string) (*model.FileMetadata, error) {
	var meta model.FileMetadata
	if err := c.getJSON(ctx, "ontology metadata", c.endpoint(nil, "ontologies", id, "metadata"), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// GroupBySource groups ontologies by the file they were loaded from, in
// first-seen order. Ontologies without provenance are left out.
func GroupBySource(list []model.Ontology) (files []string, groups map[string][]model.Ontology) {
	groups = make(map[string][]model.Ontology)
	for _, o := range list {
		if o.Source == nil || o.Source.SourceFile == "" {
			continue
		}
		key := o.Source.SourceFile
		if _, ok := groups[key]; !ok {
			files = append(files, key)
		}
		groups[key] = append(groups[key], o)
	}
	return files, groups
}

// ─── Search ───

// Search runs a query. A response that is not a JSON array is a protocol error.
func (c *Client) Search(ctx context.Context, q model.Query, perPage int) ([]model.SearchResult, error) {
	q = q.Normalized()
	if q.Text == "" {
		return nil, ValidationError("search", BlankQuery)
	}

	params := url.Values{}
	params.Set("q", q.Text)
	if q.OntologyID != "" {
		params.Set("ontology_id", q.OntologyID)
	}
	if q.Type != model.TypeAny {
		params.Set("element_type", string(q.Type))
	}
	params.Set("page", strconv.Itoa(q.Page))
	if perPage > 0 {
		params.Set("per_page", strconv.Itoa(perPage))
	}

	var raw json.RawMessage
	if err := c.getJSON(ctx, "search", c.endpoint(params, "search"), &raw); err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, protocolErr("search", fmt.Errorf("expected a JSON array, got %s", preview(trimmed)))
	}

	var results []model.SearchResult
	if err := json.Unmarshal(trimmed, &results); err != nil {
		return nil, protocolErr("search", err)
	}
	if results == nil {
		results = []model.SearchResult{}
	}
	return results, nil
}

// ─── Elements ───

// ElementDetail fetches the full record of an element. Absent fields are empty, never nil.
func (c *Client) ElementDetail(ctx context.Context, name string) (model.ElementDetail, error) {
	var d model.ElementDetail
	if err := c.getJSON(ctx, "element details", c.endpoint(nil, "elements", "details", name), &d); err != nil {
		return model.ElementDetail{}, err
	}
	if d.Positions == nil {
		d.Positions = []int{}
	}
	if d.Contexts == nil {
		d.Contexts = []model.Context{}
	}
	return d, nil
}

// ElementRelations fetches the relations of an element. A 404 means the
// element has no relations and yields an empty slice.
func (c *Client) ElementRelations(ctx context.Context, name string) ([]model.Relation, error) {
	var rels []model.Relation
	err := c.getJSON(ctx, "element relations", c.endpoint(nil, "elements", "relations", name), &rels)
	if err != nil {
		if isNotFound(err) {
			return []model.Relation{}, nil
		}
		return nil, err
	}
	if rels == nil {
		rels = []model.Relation{}
	}
	return rels, nil
}

// ─── Upload ───

// UploadRequest names the files of one ontology upload.
type UploadRequest struct {
	OntologyFile string // required
	MetadataFile string // required
	ContextFile  string // optional
}

// UploadResult is the backend acknowledgement.
type UploadResult struct {
	Message string `json:"message"`
}

// Upload posts an ontology with its metadata (and optional context) as a multipart form.
func (c *Client) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	if strings.TrimSpace(req.OntologyFile) == "" {
		return UploadResult{}, ValidationError("upload", "An ontology file is required.")
	}
	if strings.TrimSpace(req.MetadataFile) == "" {
		return UploadResult{}, ValidationError("upload", "A metadata file is required.")
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	files := []struct{ field, path string }{
		{"ontology_file", req.OntologyFile},
		{"metadata_file", req.MetadataFile},
		{"context_file", req.ContextFile},
	}
	for _, f := range files {
		if f.path == "" {
			continue
		}
		if err := attach(w, f.field, f.path); err != nil {
			return UploadResult{}, err
		}
	}
	if err := w.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("upload: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, c.endpoint(nil, "ontologies", "load"), &body)
	if err != nil {
		return UploadResult{}, transportErr("upload", 0, err)
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())

	var res UploadResult
	if err := c.do(httpReq, "upload", &res); err != nil {
		return UploadResult{}, err
	}
	return res, nil
}

func attach(w *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return ValidationError("upload", fmt.Sprintf("Cannot read %s: %v", path, err))
	}
	defer f.Close()

	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("upload: read %s: %w", path, err)
	}
	return nil
}

// ─── Source viewer ───

// ViewSourceURL returns the URL of the backend's source document viewer.
func (c *Client) ViewSourceURL(path string) string {
	params := url.Values{}
	params.Set("path", path)
	return c.endpoint(params, "view-source")
}

// ─── Transport ───

func (c *Client) endpoint(params url.Values, segments ...string) string {
	u := *c.base
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.Join(segments, "/")
	u.RawPath = strings.TrimRight(c.base.EscapedPath(), "/") + "/" + strings.Join(escaped, "/")
	if params != nil {
		u.RawQuery = params.Encode()
	}
	return u.String()
}

func (c *Client) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.agent)
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, op, target string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, target, nil)
	if err != nil {
		return transportErr(op, 0, err)
	}
	return c.do(req, op, out)
}

func (c *Client) do(req *http.Request, op string, out any) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return transportErr(op, 0, err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", "op", op, "url", req.URL.String(), "error", err)
		return transportErr(op, 0, err)
	}
	defer resp.Body.Close()

	c.log.Debug("request done", "op", op, "url", req.URL.String(), "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return notFoundErr(op)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return transportErr(op, resp.StatusCode, fmt.Errorf("%s", preview(bytes.TrimSpace(snippet))))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return protocolErr(op, err)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func preview(b []byte) string {
	if len(b) == 0 {
		return "empty body"
	}
	if len(b) > 80 {
		return string(b[:77]) + "..."
	}
	return string(b)
}
