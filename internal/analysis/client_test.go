package analysis_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soender/kvittering/internal/analysis"
)

func TestClient_Submit(t *testing.T) {
	var gotBody struct {
		Base64Source string `json:"base64Source"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/formrecognizer/documentModels/prebuilt-receipt:analyze", r.URL.Path)
		assert.Equal(t, "2023-07-31", r.URL.Query().Get("api-version"))
		assert.Equal(t, "secret-key", r.Header.Get("Ocp-Apim-Subscription-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Operation-Location", "https://example.test/results/123")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := analysis.NewClient(srv.URL+"/", "secret-key", "prebuilt-receipt", "2023-07-31")

	url, err := client.Submit(context.Background(), "aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/results/123", url)
	assert.Equal(t, "aGVsbG8=", gotBody.Base64Source)
}

func TestClient_Submit_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := analysis.NewClient(srv.URL+"/", "bad-key", "prebuilt-receipt", "2023-07-31")

	_, err := client.Submit(context.Background(), "aGVsbG8=")

	var remoteErr *analysis.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusForbidden, remoteErr.StatusCode)
}

func TestClient_Submit_MissingOperationLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := analysis.NewClient(srv.URL+"/", "key", "prebuilt-receipt", "2023-07-31")

	_, err := client.Submit(context.Background(), "aGVsbG8=")
	require.Error(t, err)

	var remoteErr *analysis.RemoteError
	assert.False(t, errors.As(err, &remoteErr), "a 202 without the header is not a remote rejection")
}

func TestClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "key", r.Header.Get("Ocp-Apim-Subscription-Key"))

		w.Write([]byte(`{"status":"succeeded","createdDateTime":"x","lastUpdatedDateTime":"y"}`))
	}))
	defer srv.Close()

	client := analysis.NewClient("https://unused.test/", "key", "prebuilt-receipt", "2023-07-31")

	body, err := client.Fetch(context.Background(), srv.URL+"/results/123")
	require.NoError(t, err)

	op, err := analysis.DecodeOperation(body)
	require.NoError(t, err)
	assert.Equal(t, analysis.StatusSucceeded, op.Status)
}

func TestClient_Fetch_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := analysis.NewClient("https://unused.test/", "key", "prebuilt-receipt", "2023-07-31")

	_, err := client.Fetch(context.Background(), srv.URL+"/results/123")

	var remoteErr *analysis.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusNotFound, remoteErr.StatusCode)
}
