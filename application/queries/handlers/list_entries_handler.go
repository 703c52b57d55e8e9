package handlers

import (
	"context"
	"net/url"
	"strings"
	"time"

	"ahkneemay/application/ports"
	"ahkneemay/application/provisioning"
	"ahkneemay/application/queries"
	"ahkneemay/domain/core/entities"

	"go.uber.org/zap"
)

// ListingOptions controls how image links are built
type ListingOptions struct {
	// ImageBaseURL overrides the bucket URL, e.g. with a CDN.
	ImageBaseURL string
	// SignedURLs links images through presigned URLs instead.
	SignedURLs   bool
	SignedURLTTL time.Duration
}

// ListEntriesHandler handles ListEntriesQuery
type ListEntriesHandler struct {
	items     ports.ItemStore
	blobs     ports.BlobStore
	resources *provisioning.Resources
	baseURL   string
	options   ListingOptions
	logger    *zap.Logger
}

// NewListEntriesHandler creates a new handler instance
func NewListEntriesHandler(
	items ports.ItemStore,
	blobs ports.BlobStore,
	resources *provisioning.Resources,
	options ListingOptions,
	logger *zap.Logger,
) *ListEntriesHandler {
	base := options.ImageBaseURL
	if base == "" {
		base = resources.BucketURL
	}
	if base != "" && !strings.HasSuffix(base, "/") {
		base += "/"
	}

	return &ListEntriesHandler{
		items:     items,
		blobs:     blobs,
		resources: resources,
		baseURL:   base,
		options:   options,
		logger:    logger,
	}
}

// Handle scans the anime table for the owner's entries. Results are
// unordered and unpaginated.
func (h *ListEntriesHandler) Handle(ctx context.Context, query queries.ListEntriesQuery) (*queries.ListEntriesResult, error) {
	result := &queries.ListEntriesResult{
		Entries:      []queries.EntryView{},
		ImageBaseURL: h.baseURL,
	}

	if query.Owner == "" {
		return result, nil
	}

	scan, err := h.items.Scan(ctx, h.resources.AnimeTable, &ports.Filter{
		Attribute: entities.AttrOwner,
		Equals:    query.Owner,
	})
	if err != nil {
		return nil, err
	}

	for _, item := range scan.Items {
		entry := entities.EntryFromAttributes(item)
		if entry.Owner != query.Owner {
			continue
		}

		imageURL, err := h.imageURL(ctx, entry.ImageKey)
		if err != nil {
			return nil, err
		}
		result.Entries = append(result.Entries, queries.EntryView{Entry: *entry, ImageURL: imageURL})
	}
	result.Count = len(result.Entries)

	h.logger.Debug("Entries listed",
		zap.String("owner", query.Owner),
		zap.Int("count", result.Count),
	)

	return result, nil
}

func (h *ListEntriesHandler) imageURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	if h.options.SignedURLs {
		return h.blobs.PresignGetObject(ctx, h.resources.BucketName, key, h.options.SignedURLTTL)
	}
	return h.baseURL + escapeKey(key), nil
}

func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
