package handlers

import (
	"context"
	"errors"
	"time"

	"ahkneemay/application/commands"
	"ahkneemay/application/ports"
	"ahkneemay/application/provisioning"
	"ahkneemay/domain/config"
	"ahkneemay/domain/core/entities"
	"ahkneemay/pkg/auth"
	pkgerrors "ahkneemay/pkg/errors"

	"go.uber.org/zap"
)

// SignUpHandler registers new accounts
type SignUpHandler struct {
	items     ports.ItemStore
	hasher    *auth.PasswordHasher
	resources *provisioning.Resources
	rules     *config.DomainConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewSignUpHandler creates a new handler instance
func NewSignUpHandler(
	items ports.ItemStore,
	hasher *auth.PasswordHasher,
	resources *provisioning.Resources,
	rules *config.DomainConfig,
	logger *zap.Logger,
) *SignUpHandler {
	return &SignUpHandler{
		items:     items,
		hasher:    hasher,
		resources: resources,
		rules:     rules,
		logger:    logger,
		now:       time.Now,
	}
}

// Handle creates the account. The insert is conditional on the username not
// existing, so two concurrent sign-ups for one name cannot both succeed.
func (h *SignUpHandler) Handle(ctx context.Context, cmd commands.SignUpCommand) (string, error) {
	if err := cmd.ValidateWith(h.rules); err != nil {
		return "", err
	}

	existing, err := h.items.GetItem(ctx, h.resources.UserTable, ports.Key{entities.AttrUsername: cmd.Username})
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", pkgerrors.NewConflictError("USERNAME_TAKEN", commands.MsgUsernameTaken)
	}

	hash, err := h.hasher.Hash(cmd.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return "", pkgerrors.NewValidationError("The password is too long.")
		}
		return "", pkgerrors.NewInternalError("failed to hash password").WithCause(err)
	}

	user := &entities.User{
		Username:     cmd.Username,
		PasswordHash: hash,
		CreatedAt:    h.now().UTC().Format(time.RFC3339),
	}

	err = h.items.PutItem(ctx, h.resources.UserTable, ports.Item(user.Attributes()),
		ports.IfNotExists(entities.AttrUsername))
	if err != nil {
		if pkgerrors.IsConflict(err) {
			return "", pkgerrors.NewConflictError("USERNAME_TAKEN", commands.MsgUsernameTaken)
		}
		return "", err
	}

	h.logger.Info("User registered", zap.String("username", user.Username))
	return commands.MsgRegistrationDone, nil
}
