package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withServer points the CLI at a test server for the duration of a test.
func withServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	oldServerURL := serverURL
	serverURL = server.URL
	t.Cleanup(func() { serverURL = oldServerURL })
}

func TestPostJSON(t *testing.T) {
	t.Run("decodes a successful response", func(t *testing.T) {
		withServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/v1/branch/sanitize", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(SanitizeResponse{Branch: "a@b", Sanitized: "a_at_b"})
		})

		var result SanitizeResponse
		err := postJSON("/api/v1/branch/sanitize", SanitizeRequest{Branch: "a@b"}, &result)

		require.NoError(t, err)
		assert.Equal(t, "a_at_b", result.Sanitized)
	})

	t.Run("accepts created responses", func(t *testing.T) {
		withServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(VersionInfo{ID: "v1"})
		})

		var result VersionInfo
		err := postJSON("/api/v1/assets/data/register", RegisterAssetRequest{}, &result)

		require.NoError(t, err)
		assert.Equal(t, "v1", result.ID)
	})

	t.Run("handles connection error", func(t *testing.T) {
		oldServerURL := serverURL
		serverURL = "http://localhost:1" // nothing listens here
		defer func() { serverURL = oldServerURL }()

		err := postJSON("/api/v1/scope/resolve", ResolveScopeRequest{}, nil)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to send request")
	})

	t.Run("surfaces the server error body", func(t *testing.T) {
		withServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"project is required"}`))
		})

		err := postJSON("/api/v1/scope/resolve", ResolveScopeRequest{}, nil)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "status 400")
		assert.Contains(t, err.Error(), "project is required")
	})

	t.Run("handles invalid json response", func(t *testing.T) {
		withServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("not valid json"))
		})

		var result SanitizeResponse
		err := postJSON("/api/v1/branch/sanitize", SanitizeRequest{Branch: "x"}, &result)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode")
	})
}

func TestGetJSON(t *testing.T) {
	t.Run("decodes a successful response", func(t *testing.T) {
		withServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(StatusResponse{Status: "ok", Version: "1.2.3"})
		})

		var result StatusResponse
		err := getJSON("/api/v1/status", &result)

		require.NoError(t, err)
		assert.Equal(t, "ok", result.Status)
		assert.Equal(t, "1.2.3", result.Version)
	})

	t.Run("surfaces non-200 status", func(t *testing.T) {
		withServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("unknown asset"))
		})

		var result StatusResponse
		err := getJSON("/api/v1/status", &result)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "status 404")
		assert.Contains(t, err.Error(), "unknown asset")
	})
}

func TestBuildDeployment(t *testing.T) {
	tests := []struct {
		name           string
		branch         string
		metaflowBranch string
		expected       *DeploymentSpec
	}{
		{
			name:     "no flags means local run",
			expected: nil,
		},
		{
			name:     "legacy branch only",
			branch:   "main",
			expected: &DeploymentSpec{Branch: "main"},
		},
		{
			name:           "metaflow branch only",
			metaflowBranch: "test.ci",
			expected:       &DeploymentSpec{MetaflowBranch: "test.ci"},
		},
		{
			name:           "both flags carried through",
			branch:         "main",
			metaflowBranch: "prod",
			expected:       &DeploymentSpec{Branch: "main", MetaflowBranch: "prod"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := buildDeployment(tt.branch, tt.metaflowBranch)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseAnnotations(t *testing.T) {
	t.Run("parses key=value pairs", func(t *testing.T) {
		annotations, err := parseAnnotations([]string{"source=cli", "row_count=100", "note=a=b"})

		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"source":    "cli",
			"row_count": "100",
			"note":      "a=b",
		}, annotations)
	})

	t.Run("returns nil for no pairs", func(t *testing.T) {
		annotations, err := parseAnnotations(nil)

		require.NoError(t, err)
		assert.Nil(t, annotations)
	})

	t.Run("rejects pairs without a separator", func(t *testing.T) {
		_, err := parseAnnotations([]string{"source"})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "expected key=value")
	})

	t.Run("rejects empty keys", func(t *testing.T) {
		_, err := parseAnnotations([]string{"=value"})

		assert.Error(t, err)
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly-ten", truncate("exactly-ten", 11))
	assert.Equal(t, "longer-...", truncate("longer-than-ten", 10))
}
