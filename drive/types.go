package drive

import (
	"io"
	"net/http"
)

// FolderMimeType identifies folders in listings.
const FolderMimeType = "application/vnd.google-apps.folder"

// File describes one Drive object. Size arrives as a decimal string and is
// relayed unchanged; folders and Google Docs have none.
type File struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	MimeType      string `json:"mimeType"`
	Size          string `json:"size,omitempty"`
	ModifiedTime  string `json:"modifiedTime,omitempty"`
	ThumbnailLink string `json:"thumbnailLink,omitempty"`
	// DownloadURL is filled in by the gateway, never by Drive.
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// IsFolder reports whether f is a folder.
func (f *File) IsFolder() bool {
	return f.MimeType == FolderMimeType
}

// FileList is one page of a folder listing.
type FileList struct {
	Files         []File `json:"files"`
	NextPageToken string `json:"nextPageToken,omitempty"`
}

// Download is an open media response. Body streams from the upstream
// connection and must be closed.
type Download struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// Close releases the upstream connection.
func (d *Download) Close() error {
	if d == nil || d.Body == nil {
		return nil
	}
	return d.Body.Close()
}
