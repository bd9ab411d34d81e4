package loader

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pexipmon/internal/domain"
)

type call struct {
	raw    bool
	query  string
	params map[string]any
}

type fakeWriter struct {
	calls []call
	fail  string
}

func (w *fakeWriter) RunWrite(_ context.Context, query string, params map[string]any) error {
	w.calls = append(w.calls, call{query: query, params: params})
	if w.fail != "" && strings.Contains(query, w.fail) {
		return errors.New("write failed")
	}
	return nil
}

func (w *fakeWriter) RunRaw(_ context.Context, query string, params map[string]any) error {
	w.calls = append(w.calls, call{raw: true, query: query, params: params})
	return nil
}

func sampleTopology() domain.Topology {
	nodes := []domain.Entity{
		{
			ID:   "1",
			Name: "node-1",
			Properties: domain.Properties{
				"Status#ID":                 "1",
				"Configuration#NodeAddress": "10.0.0.1",
				"Conference:Weekly#ID":      "c1",
			},
		},
		{Name: "node-2", Properties: domain.Properties{"Configuration#NodeAddress": "10.0.0.2"}},
	}
	conferences := []domain.Properties{
		{"ID": "c1", "Name": "Weekly", "NodeAddress": "10.0.0.1"},
		{"ID": "c2", "Name": "Orphan", "NodeAddress": "10.9.9.9"},
		{"Name": "NoID"},
	}
	participants := []domain.Properties{
		{"ID": "p1", "Conference": "Weekly"},
		{"ID": "p2", "Conference": "Weekly"},
		{"ID": "p3"},
	}
	return domain.Topology{Nodes: nodes, Conferences: conferences, Participants: participants}
}

func TestBuildRows(t *testing.T) {
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	nodeRows, relRows := BuildRows("run-1", at, sampleTopology())

	require.Len(t, nodeRows, 4)
	assert.Equal(t, "NODE_1", nodeRows[0].Key)
	assert.Equal(t, []string{domain.LabelConferencingNode}, nodeRows[0].Labels)
	assert.NotContains(t, nodeRows[0].Properties, "Conference:Weekly#ID")
	assert.Equal(t, "node-1", nodeRows[0].Properties["name"])
	assert.NotEmpty(t, nodeRows[0].Properties["content_hash"])
	assert.Equal(t, "NODE_node-2", nodeRows[1].Key)
	assert.Equal(t, "CONF_c1", nodeRows[2].Key)
	assert.Equal(t, "run-1", nodeRows[2].RunID)
	assert.Equal(t, at, nodeRows[2].UpdatedAt)
	assert.Equal(t, "2", nodeRows[2].Properties["ParticipantsCount"])
	assert.Equal(t, "0", nodeRows[3].Properties["ParticipantsCount"])

	require.Len(t, relRows, 1)
	assert.Equal(t, domain.RelRow{
		StartKey:   "NODE_1",
		EndKey:     "CONF_c1",
		Type:       domain.RelHosts,
		Properties: map[string]any{"participants": 2},
		RunID:      "run-1",
	}, relRows[0])
}

func TestBuildRowsHashStable(t *testing.T) {
	a, _ := BuildRows("r1", time.Now(), sampleTopology())
	b, _ := BuildRows("r2", time.Now(), sampleTopology())
	assert.Equal(t, a[0].Properties["content_hash"], b[0].Properties["content_hash"])
}

func TestSinkWrite(t *testing.T) {
	w := &fakeWriter{}
	sink := NewSink(w, 2, nil)
	topo := sampleTopology()

	require.NoError(t, sink.Write(context.Background(), "run-1", time.Now(), topo))
	require.NoError(t, sink.Write(context.Background(), "run-2", time.Now(), topo))

	var raw, merges, deletes int
	for _, c := range w.calls {
		switch {
		case c.raw:
			raw++
		case strings.Contains(c.query, "MERGE"):
			merges++
		case strings.Contains(c.query, "DELETE"):
			deletes++
			assert.Contains(t, []any{"run-1", "run-2"}, c.params["run_id"])
		}
	}
	assert.Equal(t, 4, raw, "schema applied once")
	// 每轮：ConferencingNode 1 批、Conference 1 批、HOSTS 1 批
	assert.Equal(t, 6, merges)
	assert.Equal(t, 6, deletes)
}

func TestSinkWriteStopsOnError(t *testing.T) {
	w := &fakeWriter{fail: "MERGE (a)"}
	sink := NewSink(w, 10, nil)
	err := sink.Write(context.Background(), "run-1", time.Now(), sampleTopology())
	require.Error(t, err)
	for _, c := range w.calls {
		assert.NotContains(t, c.query, "DELETE")
	}
}

func TestNilSinkIsNoop(t *testing.T) {
	var sink *Sink
	require.NoError(t, sink.Write(context.Background(), "r", time.Now(), domain.Topology{}))
}

func TestNodeUpserterBatches(t *testing.T) {
	w := &fakeWriter{}
	rows := []domain.NodeRow{
		{Key: "NODE_1", Labels: []string{domain.LabelConferencingNode}},
		{Key: "CONF_a", Labels: []string{domain.LabelConference}},
		{Key: "NODE_2", Labels: []string{domain.LabelConferencingNode}},
		{Key: "NODE_3", Labels: []string{domain.LabelConferencingNode}},
	}
	require.NoError(t, NewNodeUpserter(w, 2).Upsert(context.Background(), rows))
	require.Len(t, w.calls, 3)
	assert.Contains(t, w.calls[0].query, ":"+domain.LabelConferencingNode)
	assert.Len(t, w.calls[0].params["rows"], 2)
	assert.Len(t, w.calls[1].params["rows"], 1)
	assert.Contains(t, w.calls[2].query, ":"+domain.LabelConference+" ")
}

func TestUpsertersSkipEmpty(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, NewNodeUpserter(w, 0).Upsert(context.Background(), nil))
	require.NoError(t, NewRelUpserter(w, 0).Upsert(context.Background(), nil))
	assert.Empty(t, w.calls)
}
