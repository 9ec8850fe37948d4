package gitops

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMonitorObserveNoWorkflows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"workflows":[]}`))
	}))
	defer server.Close()

	client := NewGitHubClientWithBaseURL("", server.URL)
	m := NewMonitor(client, time.Second, nil)
	outcome := m.Observe(t.Context(), "acme", "widgets", "BRANCH")
	require.False(t, outcome.Triggered)
	require.Equal(t, "no_ci", outcome.Conclusion)
}

func TestMonitorObserveCompletedRunPasses(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets/actions/workflows", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"workflows":[{"id":1,"name":"CI","state":"active"}]}`))
	})
	mux.HandleFunc("/repos/acme/widgets/actions/workflows/1/dispatches", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/repos/acme/widgets/actions/runs", func(w http.ResponseWriter, r *http.Request) {
		body, _ := json.Marshal(map[string]interface{}{
			"workflow_runs": []map[string]string{{"status": "completed", "conclusion": "success", "head_branch": "BRANCH"}},
		})
		_, _ = w.Write(body)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewGitHubClientWithBaseURL("", server.URL)
	m := NewMonitor(client, 6*time.Second, nil)

	outcome := m.Observe(t.Context(), "acme", "widgets", "BRANCH")
	require.True(t, outcome.Triggered)
	require.True(t, outcome.Passed)
	require.Equal(t, "success", outcome.Conclusion)
}

func TestMonitorObserveTimesOut(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets/actions/workflows", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"workflows":[{"id":1,"name":"CI","state":"active"}]}`))
	})
	mux.HandleFunc("/repos/acme/widgets/actions/workflows/1/dispatches", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/repos/acme/widgets/actions/runs", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"workflow_runs":[]}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewGitHubClientWithBaseURL("", server.URL)
	m := NewMonitor(client, 6*time.Second, nil)
	outcome := m.Observe(t.Context(), "acme", "widgets", "BRANCH")
	require.True(t, outcome.Triggered)
	require.False(t, outcome.Passed)
	require.Equal(t, "timeout", outcome.Conclusion)
}
