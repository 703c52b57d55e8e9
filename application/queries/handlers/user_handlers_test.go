package handlers

import (
	"context"
	"testing"

	"ahkneemay/application/ports"
	"ahkneemay/application/ports/mocks"
	"ahkneemay/application/queries"
	"ahkneemay/pkg/auth"
	pkgerrors "ahkneemay/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthenticateHandler(t *testing.T) {
	ctx := context.Background()
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("hunter2hunter2")
	require.NoError(t, err)

	items := &mocks.MockItemStore{}
	items.On("GetItem", ctx, "ahkneemay_users", ports.Key{"username": "alice99"}).
		Return(ports.Item{"username": "alice99", "passwordHash": hash, "createdAt": "2024-03-01T12:00:00Z"}, nil)
	items.On("GetItem", ctx, "ahkneemay_users", ports.Key{"username": "nobody"}).Return(nil, nil)

	h := NewAuthenticateHandler(items, hasher, testResources(), zap.NewNop())

	t.Run("valid credentials", func(t *testing.T) {
		user, err := h.Handle(ctx, queries.AuthenticateQuery{Username: "alice99", Password: "hunter2hunter2"})
		require.NoError(t, err)
		assert.Equal(t, "alice99", user.Username)
	})

	t.Run("wrong password and unknown user look the same", func(t *testing.T) {
		_, errWrong := h.Handle(ctx, queries.AuthenticateQuery{Username: "alice99", Password: "nope"})
		_, errUnknown := h.Handle(ctx, queries.AuthenticateQuery{Username: "nobody", Password: "nope"})

		for _, err := range []error{errWrong, errUnknown} {
			require.Error(t, err)
			assert.Equal(t, queries.MsgLoginInvalid, pkgerrors.GetAppError(err).Message)
			assert.False(t, pkgerrors.IsFatal(err))
		}
	})
}

func TestGetUserHandler(t *testing.T) {
	ctx := context.Background()
	items := &mocks.MockItemStore{}
	items.On("GetItem", ctx, "ahkneemay_users", ports.Key{"username": "ghost1"}).Return(nil, nil)

	_, err := NewGetUserHandler(items, testResources()).Handle(ctx, queries.GetUserQuery{Username: "ghost1"})
	assert.True(t, pkgerrors.IsNotFound(err))
}
