package jwtauth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/teddybearwork/pickme/internal/jwtauth"
	id "github.com/teddybearwork/pickme/pkg/domain"
	dErrors "github.com/teddybearwork/pickme/pkg/domain-errors"
	"github.com/teddybearwork/pickme/pkg/requestcontext"
)

func TestNewService_RequiresKey(t *testing.T) {
	_, err := jwtauth.NewService("")
	require.Error(t, err)
}

func TestGenerateAndValidate(t *testing.T) {
	service, err := jwtauth.NewService("test-signing-key")
	require.NoError(t, err)
	officerID := id.NewOfficerID()

	token, err := service.Generate(officerID, "TN-4821", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.Validate(token)
	require.NoError(t, err)
	require.Equal(t, officerID.String(), claims.OfficerID)
	require.Equal(t, "TN-4821", claims.BadgeNumber)

	got, err := service.ExtractOfficerID(token)
	require.NoError(t, err)
	require.Equal(t, officerID, got)
}

func TestValidate_Failures(t *testing.T) {
	service, err := jwtauth.NewService("test-signing-key")
	require.NoError(t, err)

	t.Run("expired token", func(t *testing.T) {
		token, err := service.Generate(id.NewOfficerID(), "TN-4821", -time.Minute)
		require.NoError(t, err)

		_, err = service.Validate(token)
		require.Error(t, err)
		require.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other, err := jwtauth.NewService("different-key")
		require.NoError(t, err)
		token, err := other.Generate(id.NewOfficerID(), "TN-4821", time.Hour)
		require.NoError(t, err)

		_, err = service.Validate(token)
		require.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := service.Validate("not-a-token")
		require.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func TestMiddleware(t *testing.T) {
	service, err := jwtauth.NewService("test-signing-key")
	require.NoError(t, err)
	officerID := id.NewOfficerID()

	var gotOfficerID id.OfficerID
	handler := jwtauth.Middleware(service)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOfficerID = requestcontext.OfficerID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid bearer token passes through", func(t *testing.T) {
		token, err := service.Generate(officerID, "TN-4821", time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/query", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, officerID, gotOfficerID)
	})

	t.Run("missing header is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/query", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/query", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
