package handlers

import (
	"context"

	"ahkneemay/application/ports"
	"ahkneemay/application/provisioning"
	"ahkneemay/application/queries"
	"ahkneemay/domain/core/entities"
	"ahkneemay/pkg/auth"
	pkgerrors "ahkneemay/pkg/errors"

	"go.uber.org/zap"
)

// AuthenticateHandler checks login credentials
type AuthenticateHandler struct {
	items     ports.ItemStore
	hasher    *auth.PasswordHasher
	resources *provisioning.Resources
	logger    *zap.Logger
}

// NewAuthenticateHandler creates a new handler instance
func NewAuthenticateHandler(items ports.ItemStore, hasher *auth.PasswordHasher, resources *provisioning.Resources, logger *zap.Logger) *AuthenticateHandler {
	return &AuthenticateHandler{
		items:     items,
		hasher:    hasher,
		resources: resources,
		logger:    logger,
	}
}

// Handle returns the user when the password matches. Unknown users and wrong
// passwords produce the same error.
func (h *AuthenticateHandler) Handle(ctx context.Context, query queries.AuthenticateQuery) (*entities.User, error) {
	item, err := h.items.GetItem(ctx, h.resources.UserTable, ports.Key{entities.AttrUsername: query.Username})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, pkgerrors.NewUnauthorizedError(queries.MsgLoginInvalid)
	}

	user := entities.UserFromAttributes(item)
	if !h.hasher.Check(query.Password, user.PasswordHash) {
		h.logger.Info("Login rejected", zap.String("username", query.Username))
		return nil, pkgerrors.NewUnauthorizedError(queries.MsgLoginInvalid)
	}

	return user, nil
}

// GetUserHandler loads an account
type GetUserHandler struct {
	items     ports.ItemStore
	resources *provisioning.Resources
}

// NewGetUserHandler creates a new handler instance
func NewGetUserHandler(items ports.ItemStore, resources *provisioning.Resources) *GetUserHandler {
	return &GetUserHandler{items: items, resources: resources}
}

// Handle returns the user or a NOT_FOUND error
func (h *GetUserHandler) Handle(ctx context.Context, query queries.GetUserQuery) (*entities.User, error) {
	item, err := h.items.GetItem(ctx, h.resources.UserTable, ports.Key{entities.AttrUsername: query.Username})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, pkgerrors.NewNotFoundError("user not found")
	}
	return entities.UserFromAttributes(item), nil
}
