package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/services"
	"github.com/magabrotheeeer/subscription-tracker/internal/services/auth"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage/repository"
)

func TestFromServiceError(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
		wantMsg  string
	}{
		{fmt.Errorf("op: %w: cost must not be negative", services.ErrInvalidInput), http.StatusBadRequest, "invalid input: cost must not be negative"},
		{fmt.Errorf("op: %w", auth.ErrInvalidCredentials), http.StatusUnauthorized, "invalid credentials"},
		{fmt.Errorf("op: %w", services.ErrForbidden), http.StatusForbidden, "forbidden"},
		{fmt.Errorf("op: %w", repository.ErrNotFound), http.StatusNotFound, "not found"},
		{fmt.Errorf("op: %w", repository.ErrAlreadyExists), http.StatusConflict, "already exists"},
		{errors.New("db down"), http.StatusInternalServerError, "fallback"},
	}
	for _, tt := range tests {
		code, resp := FromServiceError(tt.err, "fallback")
		assert.Equal(t, tt.wantCode, code, tt.err.Error())
		assert.Equal(t, tt.wantMsg, resp.Error)
		assert.Equal(t, StatusError, resp.Status)
	}
}

func TestValidationError(t *testing.T) {
	type req struct {
		Name  string `validate:"required"`
		Cycle string `validate:"oneof=weekly monthly"`
		Code  string `validate:"len=3"`
	}
	err := validator.New().Struct(req{Cycle: "daily", Code: "EURO"})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))
	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "field Name is a required field, field Cycle must be one of [weekly monthly], field Code must be exactly 3 characters", resp.Error)
}

func TestValidationError_MinMaxUnits(t *testing.T) {
	type req struct {
		Password string `validate:"min=8"`
		Days     int    `validate:"max=30"`
	}
	err := validator.New().Struct(req{Password: "short", Days: 45})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))
	assert.Equal(t, "field Password must be at least 8 characters, field Days must be at most 30", resp.Error)
}
