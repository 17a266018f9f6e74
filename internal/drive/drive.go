// Package drive talks to the Google Drive v3 REST API.
package drive

import (
	"context"
	"errors"
)

// MIME type markers used by Drive to distinguish node kinds.
const (
	MimeTypeFolder   = "application/vnd.google-apps.folder"
	MimeTypeDocument = "application/vnd.google-apps.document"
)

// Sentinel errors surfaced to handlers.
var (
	// ErrNotFound is returned when Drive reports the node does not exist.
	ErrNotFound = errors.New("drive: file not found")
	// ErrNotDocument is returned when an export is requested for a node
	// that is not a Google Docs document.
	ErrNotDocument = errors.New("drive: file is not a Google Docs document")
)

// File is one node of the remote tree as returned by files.list.
type File struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	MimeType       string   `json:"mimeType"`
	Parents        []string `json:"parents,omitempty"`
	WebViewLink    string   `json:"webViewLink,omitempty"`
	WebContentLink string   `json:"webContentLink,omitempty"`
}

// IsFolder reports whether the file is a Drive folder.
func (f File) IsFolder() bool {
	return f.MimeType == MimeTypeFolder
}

// Link returns the preferred externally-resolvable URL for the file.
func (f File) Link() string {
	if f.WebViewLink != "" {
		return f.WebViewLink
	}
	return f.WebContentLink
}

// Client lists and exports nodes of the remote Drive tree.
type Client interface {
	// ListAll returns every non-trashed file visible to the credential,
	// accumulated across all result pages.
	ListAll(ctx context.Context) ([]File, error)
	// ListChildren returns the immediate children of a folder (one page,
	// non-recursive).
	ListChildren(ctx context.Context, folderID string) ([]File, error)
	// ExportHTML exports a Google Docs document as HTML. It fails with
	// ErrNotDocument for any other file kind.
	ExportHTML(ctx context.Context, fileID string) (string, error)
}
