// Package fetch downloads roster workbooks from direct links and from
// SharePoint or OneDrive share links.
package fetch

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/dutyroster/internal/workbook"
)

var (
	// ErrFetchFailed is returned when no candidate URL produced a response.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrNotSpreadsheet is returned when a response arrived but was not a workbook.
	ErrNotSpreadsheet = errors.New("response is not a spreadsheet")
)

const (
	defaultTimeout   = 90 * time.Second
	defaultUserAgent = "Mozilla/5.0 (compatible; dutyroster)"
	maxBodyBytes     = 64 << 20
)

// Fetcher downloads workbooks over HTTP.
type Fetcher struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.client = &http.Client{Timeout: d}
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher returns a new Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = zap.NewNop()
	}
	return f
}

// CandidateURLs returns the download URLs to try for a share link, in order.
// Links that are not SharePoint or OneDrive are returned unchanged.
func CandidateURLs(raw string) []string {
	u, err := url.Parse(raw)
	if err != nil {
		return []string{raw}
	}
	host := strings.ToLower(u.Host)
	sharePoint := strings.Contains(host, "sharepoint.com")
	oneDrive := strings.Contains(host, "onedrive.live.com") || strings.Contains(host, "1drv.ms")
	if !sharePoint && !oneDrive {
		return []string{raw}
	}

	encoded := base64.RawURLEncoding.EncodeToString([]byte(raw))
	candidates := []string{"https://api.onedrive.com/v1.0/shares/u!" + encoded + "/root/content"}

	q := u.Query()
	q.Set("download", "1")
	withDownload := *u
	withDownload.RawQuery = q.Encode()
	candidates = append(candidates, withDownload.String())

	shared := strings.NewReplacer("/:x:/p/", "/:x:/s/", "/:t:/p/", "/:t:/s/").Replace(u.Path)
	if shared != u.Path {
		s := withDownload
		s.Path = shared
		s.RawPath = ""
		candidates = append(candidates, s.String())
	}
	return append(candidates, raw)
}

// Fetch downloads the workbook behind rawURL. Each candidate URL is tried in
// order and the first response that starts with a workbook signature wins.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, fmt.Errorf("%w: empty url", ErrFetchFailed)
	}

	var lastErr error
	for i, candidate := range CandidateURLs(rawURL) {
		f.logger.Debug("Trying download", zap.Int("strategy", i+1), zap.String("url", truncate(candidate, 90)))
		body, ctype, err := f.get(ctx, candidate)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", ErrFetchFailed, ctx.Err())
			}
			f.logger.Warn("Download attempt failed", zap.Int("strategy", i+1), zap.Error(err))
			lastErr = err
			continue
		}
		if workbook.IsSpreadsheet(body) {
			f.logger.Info("Downloaded workbook", zap.Int("strategy", i+1), zap.Int("bytes", len(body)))
			return body, nil
		}
		lastErr = notSpreadsheet(body, ctype)
		f.logger.Warn("Download was not a workbook", zap.Int("strategy", i+1), zap.Error(lastErr))
	}
	if errors.Is(lastErr, ErrNotSpreadsheet) {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w: %w", ErrFetchFailed, lastErr)
}

func (f *Fetcher) get(ctx context.Context, target string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,application/octet-stream,*/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	return body, strings.ToLower(resp.Header.Get("Content-Type")), nil
}

func notSpreadsheet(body []byte, ctype string) error {
	if ctype == "" {
		ctype = "unknown"
	}
	if strings.Contains(ctype, "text/html") || looksLikeHTML(body) {
		hint := "link may require sign-in"
		if title := pageTitle(body); title != "" {
			hint = fmt.Sprintf("%s, page title %q", hint, title)
		}
		return fmt.Errorf("%w (content-type %s): got HTML, %s", ErrNotSpreadsheet, ctype, hint)
	}
	return fmt.Errorf("%w (content-type %s)", ErrNotSpreadsheet, ctype)
}

func looksLikeHTML(body []byte) bool {
	head := bytes.TrimSpace(body)
	return bytes.HasPrefix(head, []byte("<!")) || bytes.HasPrefix(bytes.ToLower(head), []byte("<html"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
