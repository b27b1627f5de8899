package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhabedank/brdgen/internal/core"
	"github.com/dhabedank/brdgen/internal/generator"
	"github.com/dhabedank/brdgen/internal/store"
)

func newTestServer(t *testing.T, withStore bool) *httptest.Server {
	t.Helper()
	var st *store.Store
	if withStore {
		var err error
		st, err = store.Open(filepath.Join(t.TempDir(), "h.db"))
		require.NoError(t, err)
		t.Cleanup(func() { st.Close() })
	}
	s, err := New(generator.New(nil), st, nil, "")
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, false)
	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_, err = uuid.Parse(resp.Header.Get(RequestIDHeader))
	assert.NoError(t, err, "response should carry a request id")
}

func TestRequestIDPassthrough(t *testing.T) {
	ts := newTestServer(t, false)
	id := uuid.NewString()

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/health", nil)
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, id, resp.Header.Get(RequestIDHeader))
}

func TestIndex(t *testing.T) {
	ts := newTestServer(t, true)
	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	assert.Contains(t, buf.String(), `<form method="post" action="/generate">`)

	resp404, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	resp404.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp404.StatusCode)
}

func TestGenerateAndHistory(t *testing.T) {
	ts := newTestServer(t, true)

	resp := postJSON(t, ts.URL+"/api/generate", map[string]any{
		"project":      "Campaign Hub",
		"scope":        "Email campaign automation with lead scoring",
		"requirements": "Launch promotion journeys\nCapture leads from landing forms",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got generateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, core.Marketing, got.Document.Domain)
	assert.Equal(t, core.DocBRD, got.Document.Type)
	assert.Equal(t, 1, got.Document.Version)
	assert.Contains(t, got.Document.HTML, "EPIC-01")
	require.NotEmpty(t, got.ID)

	// A second run of the same project gets the next version.
	resp = postJSON(t, ts.URL+"/api/generate", map[string]any{"project": "Campaign Hub", "format": "markdown"})
	var second generateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&second))
	assert.Equal(t, 2, second.Document.Version)

	list, err := http.Get(ts.URL + "/api/documents?project=" + url.QueryEscape("Campaign Hub"))
	require.NoError(t, err)
	defer list.Body.Close()
	var docs []store.Record
	require.NoError(t, json.NewDecoder(list.Body).Decode(&docs))
	require.Len(t, docs, 2)
	assert.Equal(t, 2, docs[0].Version)

	one, err := http.Get(ts.URL + "/api/documents/" + got.ID)
	require.NoError(t, err)
	defer one.Body.Close()
	var rec store.Record
	require.NoError(t, json.NewDecoder(one.Body).Decode(&rec))
	assert.Equal(t, got.Document.HTML, rec.Body)

	body, err := http.Get(ts.URL + "/api/documents/" + second.ID + "/body")
	require.NoError(t, err)
	defer body.Body.Close()
	assert.Equal(t, "text/markdown; charset=utf-8", body.Header.Get("Content-Type"))

	missing, err := http.Get(ts.URL + "/api/documents/DOC-missing")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestGenerateRejects(t *testing.T) {
	ts := newTestServer(t, false)

	tests := []struct {
		name string
		body any
	}{
		{"unknown type", map[string]any{"type": "PRD"}},
		{"unknown format", map[string]any{"format": "pdf"}},
		{"negative version", map[string]any{"version": -1}},
		{"frd without brd", map[string]any{"type": "FRD"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/api/generate", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	resp, err := http.Post(ts.URL+"/api/generate", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateForm(t *testing.T) {
	ts := newTestServer(t, false)

	resp, err := http.PostForm(ts.URL+"/generate", url.Values{
		"type":    {"FRD"},
		"project": {"Telco"},
		"brd":     {"EPIC-01: Billing\nRequirements:\n• Generate monthly invoices for subscribers"},
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	assert.Contains(t, buf.String(), "Functional Requirements Document")
	assert.Contains(t, buf.String(), "FR-001")
}

func TestClassify(t *testing.T) {
	ts := newTestServer(t, false)
	resp := postJSON(t, ts.URL+"/api/classify", map[string]string{"text": "email campaign lead CRM automation"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got classifyResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, core.Marketing, got.Domain)
	assert.Equal(t, "Marketing", got.Label)
	assert.NotEmpty(t, got.Scores)
}

func TestDocumentsWithoutStore(t *testing.T) {
	ts := newTestServer(t, false)
	resp, err := http.Get(ts.URL + "/api/documents")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, false)
	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/generate", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
