package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/pe-research/internal/model"
	"github.com/sells-group/pe-research/internal/research"
	"github.com/sells-group/pe-research/internal/store"
)

// stubAnalyzer records the history it was handed and returns a fixed result.
type stubAnalyzer struct {
	lastQuery   string
	lastHistory []model.Message
}

func (s *stubAnalyzer) Analyze(_ context.Context, query string, history []model.Message) *research.Result {
	s.lastQuery = query
	s.lastHistory = history
	return &research.Result{
		Report:   "# Apple - PE Research Analysis\n\nbody",
		Company:  "Apple",
		Degraded: []string{"synthesize"},
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *stubAnalyzer, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "serve.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	stub := &stubAnalyzer{}
	srv := httptest.NewServer(newRouter(stub, st))
	t.Cleanup(srv.Close)
	return srv, stub, st
}

func postChat(t *testing.T, srv *httptest.Server, payload map[string]string) (int, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/api/chat", "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestChatCreatesSessionAndPersistsTurns(t *testing.T) {
	srv, stub, st := newTestServer(t)

	status, out := postChat(t, srv, map[string]string{"query": "Tell me about Apple"})
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, "Apple", out["company"])
	assert.Contains(t, out["report"], "PE Research Analysis")
	assert.Equal(t, "Tell me about Apple", stub.lastQuery)
	assert.Empty(t, stub.lastHistory)

	sessionID, _ := out["session_id"].(string)
	require.NotEmpty(t, sessionID)

	msgs, err := st.ListMessages(context.Background(), sessionID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)
}

func TestChatContinuesSessionWithHistory(t *testing.T) {
	srv, stub, _ := newTestServer(t)

	_, first := postChat(t, srv, map[string]string{"query": "Tell me about Apple"})
	sessionID, _ := first["session_id"].(string)
	require.NotEmpty(t, sessionID)

	status, second := postChat(t, srv, map[string]string{"query": "tell me more", "session_id": sessionID})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, sessionID, second["session_id"])

	// The follow-up sees both turns of the first exchange.
	require.Len(t, stub.lastHistory, 2)
	assert.Equal(t, "Tell me about Apple", stub.lastHistory[0].Content)
}

func TestChatValidation(t *testing.T) {
	srv, _, _ := newTestServer(t)

	status, out := postChat(t, srv, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "query is required", out["error"])

	status, out = postChat(t, srv, map[string]string{"query": "hi", "session_id": "no-such-session"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "session not found", out["error"])
}

func TestSessionEndpoints(t *testing.T) {
	srv, _, _ := newTestServer(t)

	_, first := postChat(t, srv, map[string]string{"query": "Tell me about Apple"})
	sessionID, _ := first["session_id"].(string)

	resp, err := http.Get(srv.URL + "/api/sessions")
	require.NoError(t, err)
	defer resp.Body.Close()
	var listed struct {
		Sessions []model.Session `json:"sessions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	require.Len(t, listed.Sessions, 1)
	assert.Equal(t, sessionID, listed.Sessions[0].ID)

	resp, err = http.Get(srv.URL + "/api/sessions/" + sessionID + "/messages")
	require.NoError(t, err)
	defer resp.Body.Close()
	var detail struct {
		Messages []model.Message `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&detail))
	assert.Len(t, detail.Messages, 2)

	resp, err = http.Post(srv.URL+"/api/sessions/"+sessionID+"/reset", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	msgs, err := http.Get(srv.URL + "/api/sessions/" + sessionID + "/messages")
	require.NoError(t, err)
	defer msgs.Body.Close()
	var afterReset struct {
		Messages []model.Message `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(msgs.Body).Decode(&afterReset))
	assert.Empty(t, afterReset.Messages)
}

func TestMessagesUnknownSession(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/sessions/missing/messages")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessionTitleTruncation(t *testing.T) {
	long := "Tell me everything there is to know about the competitive positioning of Apple"
	title := sessionTitle(long)
	assert.Len(t, title, 60)
	assert.Equal(t, "Tell me about Apple", sessionTitle("Tell me about Apple"))
}
