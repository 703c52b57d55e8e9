package valueobjects

import (
	"io"
	"net/url"
	"path"
	"strings"
)

// Image is an uploaded cover image. Body is read once, when the image is
// stored.
type Image struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// BaseName returns the final element of the uploaded filename, with any
// client-side directory stripped. It returns "" when nothing usable is left.
func (i *Image) BaseName() string {
	name := strings.ReplaceAll(strings.TrimSpace(i.Filename), "\\", "/")
	if name == "" {
		return ""
	}
	base := path.Base(name)
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}

// ObjectKey derives the blob key of the image for an entry:
// "<owner>/<title>/<filename>" with owner and title path-escaped, so each is
// exactly one key segment. When the upload has no filename, "cover" plus ext
// is used instead.
func (i *Image) ObjectKey(key EntryKey, ext string) string {
	name := i.BaseName()
	if name == "" {
		name = "cover" + ext
	}
	return url.PathEscape(key.Owner()) + "/" + url.PathEscape(key.Title()) + "/" + name
}
