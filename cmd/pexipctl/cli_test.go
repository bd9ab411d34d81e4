package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pexipmon/internal/domain"
)

type fakeNode struct {
	mu       sync.Mutex
	objects  map[string][]map[string]any
	commands map[string][]map[string]string
}

func newFakeNode(t *testing.T) (*fakeNode, *httptest.Server) {
	t.Helper()
	n := &fakeNode{
		objects: map[string][]map[string]any{
			"/api/admin/status/v1/conference/":       {{"id": "c1", "name": "Weekly"}},
			"/api/admin/status/v1/conference_shard/": {{"id": "c1", "node": "10.0.0.1"}},
			"/api/admin/status/v1/participant/":      {{"id": "p1", "display_name": "Alice", "conference": "Weekly"}},
			"/api/admin/status/v1/worker_vm/":        {{"id": 1, "name": "node-1"}},
			"/api/admin/configuration/v1/worker_vm/": {{"name": "node-1", "address": "10.0.0.1"}},
			"/api/admin/status/v1/licensing/":        {{"port_total": 10, "port_count": 2, "customer_id": "ACME"}},
		},
		commands: make(map[string][]map[string]string),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n.mu.Lock()
		defer n.mu.Unlock()
		if user, pass, ok := r.BasicAuth(); !ok || user != "admin" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Method == http.MethodPost {
			body := map[string]string{}
			data, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(data, &body)
			n.commands[r.URL.Path] = append(n.commands[r.URL.Path], body)
			w.WriteHeader(http.StatusAccepted)
			return
		}
		objs := n.objects[r.URL.Path]
		if objs == nil {
			objs = []map[string]any{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"meta":    map[string]any{"total_count": len(objs)},
			"objects": objs,
		})
	}))
	t.Cleanup(srv.Close)
	return n, srv
}

func executeCLI(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	stdout := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(&bytes.Buffer{})
	base := []string{"--config", "", "--base-url", srv.URL, "--username", "admin", "--password", "secret", "--log-level", "error"}
	root.SetArgs(append(base, args...))
	err := root.Execute()
	return stdout.String(), err
}

func TestRefreshPrintsNodes(t *testing.T) {
	_, srv := newFakeNode(t)
	out, err := executeCLI(t, srv, "refresh")
	require.NoError(t, err)
	assert.Contains(t, out, "1 nodes, 1 conferences, 1 participants")
	assert.Contains(t, out, "1\tnode-1\t10.0.0.1")
}

func TestRefreshJSON(t *testing.T) {
	_, srv := newFakeNode(t)
	out, err := executeCLI(t, srv, "refresh", "--json")
	require.NoError(t, err)
	var nodes []domain.Entity
	require.NoError(t, json.Unmarshal([]byte(out), &nodes))
	require.Len(t, nodes, 1)
	assert.Equal(t, "node-1", nodes[0].Name)
}

func TestStatsSplitsLicensing(t *testing.T) {
	_, srv := newFakeNode(t)
	out, err := executeCLI(t, srv, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Licensing#CustomerID=ACME")
	assert.Contains(t, out, "Licensing#PortTotal=10")
}

func TestDisconnectByName(t *testing.T) {
	node, srv := newFakeNode(t)
	_, err := executeCLI(t, srv, "disconnect", "participant", "Alice")
	require.NoError(t, err)
	_, err = executeCLI(t, srv, "disconnect", "conference", "Missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing")

	node.mu.Lock()
	defer node.mu.Unlock()
	assert.Equal(t, []map[string]string{{"participant_id": "p1"}}, node.commands["/api/admin/command/v1/participant/disconnect/"])
	assert.Empty(t, node.commands["/api/admin/command/v1/conference/disconnect/"])
}

func TestExportWithoutSMTP(t *testing.T) {
	_, srv := newFakeNode(t)
	_, err := executeCLI(t, srv, "export", "licensing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp")
}

func TestDaysBackValidation(t *testing.T) {
	_, srv := newFakeNode(t)
	out, err := executeCLI(t, srv, "days-back", "3")
	require.NoError(t, err)
	assert.Equal(t, "days_back=3\n", out)

	_, err = executeCLI(t, srv, "days-back", "--", "-1")
	require.Error(t, err)
}

func TestMissingBaseURL(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", "", "refresh"})
	t.Setenv("PEXIPCTL_BASE_URL", "")
	err := root.Execute()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "base_url"))
}

func TestBaseURLFromEnv(t *testing.T) {
	_, srv := newFakeNode(t)
	t.Setenv("PEXIPCTL_BASE_URL", srv.URL)
	t.Setenv("PEXIPCTL_USERNAME", "admin")
	t.Setenv("PEXIPCTL_PASSWORD", "secret")
	root := newRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", "", "--log-level", "error", "refresh"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "node-1")
}

func TestVersionSkipsConnection(t *testing.T) {
	root := newRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.NotEmpty(t, out.String())
}
