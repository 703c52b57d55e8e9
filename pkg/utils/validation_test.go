package utils

import (
	"testing"

	pkgerrors "ahkneemay/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Username string `json:"username" validate:"required,max=8"`
	Year     string `json:"year" validate:"omitempty,numeric"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, ValidateStruct(sampleRequest{Username: "alice", Year: "2002"}))

	err := ValidateStruct(sampleRequest{Year: "soon"})
	require.True(t, pkgerrors.IsValidation(err))

	fields := pkgerrors.GetAppError(err).Details["fields"].(map[string]interface{})
	assert.Equal(t, "username is required", fields["username"])
	assert.Equal(t, "year must be a number", fields["year"])

	err = ValidateStruct(sampleRequest{Username: "much-too-long"})
	assert.Contains(t, err.Error(), "username must be at most 8 characters")
}
