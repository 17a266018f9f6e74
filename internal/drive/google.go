package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"

	"github.com/studyshelf/studyshelf/internal/logging"
	"github.com/studyshelf/studyshelf/internal/metrics"
)

const (
	defaultBaseURL = "https://www.googleapis.com/drive/v3"
	driveScope     = "https://www.googleapis.com/auth/drive"
	listFields     = "nextPageToken, files(id, name, mimeType, parents, webViewLink, webContentLink)"
	listPageSize   = "1000"
)

// GoogleClient is a Client backed by the Drive v3 REST API with a
// service-account credential.
type GoogleClient struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures a GoogleClient.
type Option func(*GoogleClient)

// WithBaseURL overrides the API endpoint. Used in tests.
func WithBaseURL(u string) Option {
	return func(c *GoogleClient) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client (and with it the credential).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *GoogleClient) { c.httpClient = hc }
}

// NewGoogleClient builds a client from a service-account JSON key file.
func NewGoogleClient(ctx context.Context, keyFile string, timeout time.Duration, opts ...Option) (*GoogleClient, error) {
	c := &GoogleClient{baseURL: defaultBaseURL}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		keyJSON, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, fmt.Errorf("read drive key file: %w", err)
		}
		conf, err := google.JWTConfigFromJSON(keyJSON, driveScope)
		if err != nil {
			return nil, fmt.Errorf("parse drive credentials: %w", err)
		}
		c.httpClient = conf.Client(ctx)
	}
	c.httpClient.Timeout = timeout
	return c, nil
}

// listResponse is one page of a files.list call.
type listResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Files         []File `json:"files"`
}

// fileMetadata is the subset of files.get used before an export.
type fileMetadata struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

// ListAll fetches every non-trashed file, following page tokens until the
// listing is exhausted.
func (c *GoogleClient) ListAll(ctx context.Context) ([]File, error) {
	var files []File
	pageToken := ""
	pages := 0

	for {
		q := url.Values{}
		q.Set("q", "trashed = false")
		q.Set("fields", listFields)
		q.Set("pageSize", listPageSize)
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}

		var page listResponse
		if err := c.getJSON(ctx, "list_all", "/files?"+q.Encode(), &page); err != nil {
			return nil, err
		}
		files = append(files, page.Files...)
		pages++

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	logging.Debug("drive listing complete",
		zap.Int("files", len(files)),
		zap.Int("pages", pages))
	return files, nil
}

// ListChildren fetches the immediate children of a folder.
func (c *GoogleClient) ListChildren(ctx context.Context, folderID string) ([]File, error) {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("'%s' in parents and trashed = false", folderID))
	q.Set("fields", "files(id, name, mimeType, webViewLink, webContentLink)")
	q.Set("pageSize", listPageSize)

	var page listResponse
	if err := c.getJSON(ctx, "list_children", "/files?"+q.Encode(), &page); err != nil {
		return nil, err
	}
	return page.Files, nil
}

// ExportHTML exports a Google Docs document as HTML. The mime type is
// checked first so that non-documents never reach the export endpoint.
func (c *GoogleClient) ExportHTML(ctx context.Context, fileID string) (string, error) {
	var meta fileMetadata
	metaPath := "/files/" + url.PathEscape(fileID) + "?fields=" + url.QueryEscape("name, mimeType")
	if err := c.getJSON(ctx, "get_metadata", metaPath, &meta); err != nil {
		return "", err
	}
	if meta.MimeType != MimeTypeDocument {
		return "", fmt.Errorf("%w: %s has mime type %s", ErrNotDocument, fileID, meta.MimeType)
	}

	exportPath := "/files/" + url.PathEscape(fileID) + "/export?mimeType=" + url.QueryEscape("text/html")
	body, err := c.get(ctx, "export", exportPath)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *GoogleClient) getJSON(ctx context.Context, operation, path string, out any) error {
	body, err := c.get(ctx, operation, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode drive response: %w", err)
	}
	return nil
}

func (c *GoogleClient) get(ctx context.Context, operation, path string) ([]byte, error) {
	start := time.Now()
	success := false
	defer func() {
		metrics.RecordDriveCall(operation, time.Since(start), success)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("drive %s: %w", operation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("drive %s: read body: %w", operation, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("drive %s: %w", operation, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("drive %s: unexpected status %d: %s", operation, resp.StatusCode, truncate(body, 200))
	}

	success = true
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
