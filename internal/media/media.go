// Package media implements the video-media predicate and preview locators.
//
// A preview locator is a temporary binding between an opaque token and the uploaded bytes.
// It lets a surface render the selected media without consuming it, and must be released
// exactly once when the media is superseded, cleared, or its session is torn down.
package media

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/desertthunder/vidstyle/internal/models"
)

const videoPrefix = "video/"

// Upload is a user-chosen file before a preview has been derived from it.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Media returns the metadata portion of the upload.
func (u Upload) Media() models.Media {
	return models.Media{Name: u.Name, Size: u.Size, ContentType: u.ContentType}
}

// Locator is a live preview handle. Release frees the underlying resource and is idempotent.
type Locator interface {
	Token() string
	URL() string
	Media() models.Media
	Release() error
}

// Previews derives preview locators from uploads.
type Previews interface {
	Acquire(upload Upload) (Locator, error)
}

// IsVideo reports whether contentType names a video media type.
//
// Parameters such as "; codecs=..." are ignored and the comparison is case-insensitive.
func IsVideo(contentType string) bool {
	return strings.HasPrefix(BaseType(contentType), videoPrefix)
}

// BaseType lowercases contentType and strips any parameters.
func BaseType(contentType string) string {
	base, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(base))
}

// ResolveContentType returns the declared type when it is specific, otherwise the type implied
// by the file extension, otherwise the type sniffed from head.
func ResolveContentType(declared, name string, head []byte) string {
	if t := BaseType(declared); t != "" && t != "application/octet-stream" {
		return t
	}
	if t := BaseType(mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))); t != "" {
		return t
	}
	if len(head) > 0 {
		return BaseType(http.DetectContentType(head))
	}
	return "application/octet-stream"
}
