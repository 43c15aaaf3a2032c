package signzy_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/teddybearwork/pickme/internal/provider/signzy"
	"github.com/teddybearwork/pickme/internal/query"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func makePhoneQuery(t *testing.T, value string) query.Query {
	t.Helper()
	q, err := query.NewQuery(query.KindPhone, value, value, query.TierPaid, fixedNow)
	require.NoError(t, err)
	return q
}

func TestNew_Validation(t *testing.T) {
	_, err := signzy.New("", "key")
	require.Error(t, err)

	_, err = signzy.New("https://example.test", "")
	require.Error(t, err)
}

func TestLookup_Phone(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{
				"operator": "Airtel",
				"circle":   "Tamil Nadu",
				"active":   true,
			},
		})
	}))
	defer server.Close()

	client, err := signzy.New(server.URL, "test-key")
	require.NoError(t, err)
	require.Equal(t, "signzy", client.Name())

	payload, err := client.Lookup(context.Background(), makePhoneQuery(t, "9791103607"))
	require.NoError(t, err)
	require.Equal(t, 2, payload.CostCredits)
	require.Equal(t, "Airtel", payload.Fields["operator"])
	require.Equal(t, "true", payload.Fields["active"])

	require.Equal(t, "/api/v2/phone", gotPath)
	require.Equal(t, "test-key", gotAuth)
	require.Equal(t, "9791103607", gotBody["phone"])
}

func TestLookup_Failures(t *testing.T) {
	t.Run("unsupported kind", func(t *testing.T) {
		client, err := signzy.New("https://example.test", "key")
		require.NoError(t, err)

		q, err := query.NewQuery(query.KindEmail, "a@b.io", "a@b.io", query.TierFree, fixedNow)
		require.NoError(t, err)
		_, err = client.Lookup(context.Background(), q)
		require.Error(t, err)
	})

	t.Run("verifier error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "number not in service"})
		}))
		defer server.Close()

		client, err := signzy.New(server.URL, "key")
		require.NoError(t, err)

		_, err = client.Lookup(context.Background(), makePhoneQuery(t, "9791103607"))
		require.ErrorContains(t, err, "number not in service")
	})

	t.Run("empty result", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{}})
		}))
		defer server.Close()

		client, err := signzy.New(server.URL, "key")
		require.NoError(t, err)

		_, err = client.Lookup(context.Background(), makePhoneQuery(t, "9791103607"))
		require.Error(t, err)
	})
}
