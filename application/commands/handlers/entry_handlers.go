package handlers

import (
	"context"
	"fmt"

	"ahkneemay/application/commands"
	"ahkneemay/application/ports"
	"ahkneemay/application/provisioning"
	"ahkneemay/domain/config"
	"ahkneemay/domain/core/entities"
	"ahkneemay/domain/core/valueobjects"
	pkgerrors "ahkneemay/pkg/errors"

	"go.uber.org/zap"
)

// Success messages of the entry handlers
const (
	MsgEntryAdded   = "The anime has been added to your list."
	MsgEntryUpdated = "The anime has been updated."
	MsgEntryRemoved = "\"%s\" has been removed from your list."
	MsgEntryMissing = "The anime \"%s\" is not on your list."
)

func entryKey(key valueobjects.EntryKey) ports.Key {
	return ports.Key{
		entities.AttrTitle: key.Title(),
		entities.AttrOwner: key.Owner(),
	}
}

// AddOrUpdateEntryHandler writes an entry and its cover image. The image is
// stored before the record so that a record never names a missing image.
type AddOrUpdateEntryHandler struct {
	items     ports.ItemStore
	blobs     ports.BlobStore
	resources *provisioning.Resources
	rules     *config.DomainConfig
	logger    *zap.Logger
}

// NewAddOrUpdateEntryHandler creates a new handler instance
func NewAddOrUpdateEntryHandler(
	items ports.ItemStore,
	blobs ports.BlobStore,
	resources *provisioning.Resources,
	rules *config.DomainConfig,
	logger *zap.Logger,
) *AddOrUpdateEntryHandler {
	return &AddOrUpdateEntryHandler{
		items:     items,
		blobs:     blobs,
		resources: resources,
		rules:     rules,
		logger:    logger,
	}
}

// Handle validates the command, then runs lookup, old image removal, upload
// and upsert in that order. The first failing step ends the operation and
// its error is returned unchanged.
func (h *AddOrUpdateEntryHandler) Handle(ctx context.Context, cmd commands.AddOrUpdateEntryCommand) (string, error) {
	if err := cmd.ValidateWith(h.rules); err != nil {
		return "", err
	}

	key := valueobjects.NewEntryKey(cmd.Title, cmd.Owner)

	existing, err := h.items.GetItem(ctx, h.resources.AnimeTable, entryKey(key))
	if err != nil {
		return "", err
	}

	if existing != nil {
		previous := entities.EntryFromAttributes(existing)
		if previous.HasImage() {
			if err := h.blobs.DeleteObject(ctx, h.resources.BucketName, previous.ImageKey); err != nil {
				return "", err
			}
			h.logger.Debug("Removed previous cover image",
				zap.String("entry", key.String()),
				zap.String("imageKey", previous.ImageKey),
			)
		}
	}

	imageKey := cmd.Image.ObjectKey(key, h.rules.ImageExtension(cmd.Image.ContentType))
	if err := h.blobs.PutObject(ctx, ports.Object{
		Bucket:        h.resources.BucketName,
		Key:           imageKey,
		Body:          cmd.Image.Body,
		ContentType:   cmd.Image.ContentType,
		ContentLength: cmd.Image.Size,
		ACL:           ports.ACLPublicRead,
	}); err != nil {
		return "", err
	}

	entry := entities.NewEntry(key, imageKey, cmd.Publisher, cmd.Author, cmd.Year, cmd.Seasons)
	if err := h.items.PutItem(ctx, h.resources.AnimeTable, ports.Item(entry.Attributes())); err != nil {
		return "", err
	}

	h.logger.Info("Entry saved",
		zap.String("entry", key.String()),
		zap.String("imageKey", imageKey),
		zap.Bool("replaced", existing != nil),
	)

	if existing != nil {
		return MsgEntryUpdated, nil
	}
	return MsgEntryAdded, nil
}

// RemoveEntryHandler deletes an entry and its cover image
type RemoveEntryHandler struct {
	items     ports.ItemStore
	blobs     ports.BlobStore
	resources *provisioning.Resources
	logger    *zap.Logger
}

// NewRemoveEntryHandler creates a new handler instance
func NewRemoveEntryHandler(
	items ports.ItemStore,
	blobs ports.BlobStore,
	resources *provisioning.Resources,
	logger *zap.Logger,
) *RemoveEntryHandler {
	return &RemoveEntryHandler{
		items:     items,
		blobs:     blobs,
		resources: resources,
		logger:    logger,
	}
}

// Handle removes the image first and the record second. A missing entry is
// reported without touching either store.
func (h *RemoveEntryHandler) Handle(ctx context.Context, cmd commands.RemoveEntryCommand) (string, error) {
	if err := cmd.Validate(); err != nil {
		return "", err
	}

	key := valueobjects.NewEntryKey(cmd.Title, cmd.Owner)

	existing, err := h.items.GetItem(ctx, h.resources.AnimeTable, entryKey(key))
	if err != nil {
		return "", err
	}
	if existing == nil {
		return "", pkgerrors.NewNotFoundError(fmt.Sprintf(MsgEntryMissing, cmd.Title))
	}

	entry := entities.EntryFromAttributes(existing)
	if entry.HasImage() {
		if err := h.blobs.DeleteObject(ctx, h.resources.BucketName, entry.ImageKey); err != nil {
			return "", err
		}
	}

	if err := h.items.DeleteItem(ctx, h.resources.AnimeTable, entryKey(key)); err != nil {
		h.logger.Error("Entry record left without its image",
			zap.String("entry", key.String()),
			zap.Error(err),
		)
		return "", err
	}

	h.logger.Info("Entry removed", zap.String("entry", key.String()))
	return fmt.Sprintf(MsgEntryRemoved, cmd.Title), nil
}
