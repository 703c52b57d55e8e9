package handlers

import (
	"context"
	"strings"
	"testing"
	"time"

	"ahkneemay/application/commands"
	"ahkneemay/application/ports"
	"ahkneemay/application/ports/mocks"
	"ahkneemay/domain/config"
	"ahkneemay/infrastructure/persistence/memory"
	"ahkneemay/pkg/auth"
	pkgerrors "ahkneemay/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newUserStore(t *testing.T) *memory.ItemStore {
	t.Helper()
	store := memory.NewItemStore()
	_, err := store.CreateTable(context.Background(), ports.TableSpec{
		Name:      "ahkneemay_users",
		KeySchema: ports.KeySchema{HashKey: "username"},
	})
	require.NoError(t, err)
	return store
}

func TestSignUpHandler(t *testing.T) {
	ctx := context.Background()
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	rules := config.DefaultDomainConfig()

	valid := commands.SignUpCommand{Username: "alice99", Password: "hunter2hunter2", PasswordConfirm: "hunter2hunter2"}

	t.Run("creates the account", func(t *testing.T) {
		store := newUserStore(t)
		h := NewSignUpHandler(store, hasher, testResources(), rules, zap.NewNop())
		h.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

		msg, err := h.Handle(ctx, valid)
		require.NoError(t, err)
		assert.Equal(t, commands.MsgRegistrationDone, msg)

		item, err := store.GetItem(ctx, "ahkneemay_users", ports.Key{"username": "alice99"})
		require.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, "2024-03-01T12:00:00Z", item["createdAt"])
		assert.NotEqual(t, valid.Password, item["passwordHash"])
		assert.True(t, hasher.Check(valid.Password, item["passwordHash"]))
	})

	t.Run("username taken", func(t *testing.T) {
		store := newUserStore(t)
		h := NewSignUpHandler(store, hasher, testResources(), rules, zap.NewNop())

		_, err := h.Handle(ctx, valid)
		require.NoError(t, err)

		_, err = h.Handle(ctx, valid)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsConflict(err))
		assert.Equal(t, commands.MsgUsernameTaken, pkgerrors.GetAppError(err).Message)
	})

	t.Run("concurrent insert loses the condition", func(t *testing.T) {
		items := &mocks.MockItemStore{}
		items.On("GetItem", ctx, "ahkneemay_users", ports.Key{"username": "alice99"}).Return(nil, nil)
		items.On("PutItem", ctx, "ahkneemay_users", mock.Anything, ports.PutOptions{IfNotExists: "username"}).
			Return(pkgerrors.NewConflictError(pkgerrors.CodeConditionFailed, "exists"))

		h := NewSignUpHandler(items, hasher, testResources(), rules, zap.NewNop())
		_, err := h.Handle(ctx, valid)

		assert.Equal(t, commands.MsgUsernameTaken, pkgerrors.GetAppError(err).Message)
	})

	t.Run("rule violations never reach the store", func(t *testing.T) {
		cases := []struct {
			cmd     commands.SignUpCommand
			message string
		}{
			{commands.SignUpCommand{Username: "bob", Password: "hunter2hunter2", PasswordConfirm: "hunter2hunter2"}, "The username must be at least 6 characters in length."},
			{commands.SignUpCommand{Username: strings.Repeat("b", 21), Password: "hunter2hunter2", PasswordConfirm: "hunter2hunter2"}, "The username cannot contain more than 20 characters."},
			{commands.SignUpCommand{Username: "aliceb/x", Password: "hunter2hunter2", PasswordConfirm: "hunter2hunter2"}, commands.MsgUsernameCharset},
			{commands.SignUpCommand{Username: "alice 99", Password: "hunter2hunter2", PasswordConfirm: "hunter2hunter2"}, commands.MsgUsernameCharset},
			{commands.SignUpCommand{Username: "alice99", Password: "short", PasswordConfirm: "short"}, "The password must be at least 8 characters in length."},
			{commands.SignUpCommand{Username: "alice99", Password: "hunter2hunter2", PasswordConfirm: "hunter3hunter3"}, commands.MsgPasswordMismatch},
			{commands.SignUpCommand{Username: "alice99", Password: "hunter2hunter2", PasswordConfirm: "hunter2hunter2", Honeypot: "http://spam"}, commands.MsgRegistrationDenied},
		}

		for _, c := range cases {
			items := &mocks.MockItemStore{}
			h := NewSignUpHandler(items, hasher, testResources(), rules, zap.NewNop())

			_, err := h.Handle(ctx, c.cmd)
			require.Error(t, err)
			assert.Equal(t, c.message, pkgerrors.GetAppError(err).Message)
			assert.Empty(t, items.Calls)
		}
	})
}
