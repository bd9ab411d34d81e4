package mapping

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pexipmon/internal/pexip"
)

func TestDefaultCoversKnownProfiles(t *testing.T) {
	p := Default()
	for _, profile := range KnownProfiles {
		assert.NotEmpty(t, p[profile], "profile %s", profile)
	}
}

func TestParseRejectsUnknownProfile(t *testing.T) {
	_, err := Parse([]byte("profiles:\n  Bogus:\n    A: a\n"))
	require.Error(t, err)

	_, err = Parse([]byte("profiles:\n  Participant:\n    A: \"\"\n"))
	require.Error(t, err)
}

func TestApplyStringifiesAndSkipsMissing(t *testing.T) {
	m := NewYAMLMapper(Profiles{
		ProfileConferenceStatus: Rules{
			"ID":       "id",
			"Name":     "name",
			"IsLocked": "is_locked",
			"Tag":      "tag",
			"Node":     "shard.node",
			"First":    "aliases.0",
		},
	})
	rec := pexip.Record{
		"id":        "id1",
		"name":      "Conf1",
		"is_locked": false,
		"tag":       nil,
		"shard":     map[string]any{"node": "10.0.0.1"},
		"aliases":   []any{"meet.alice"},
	}
	props, err := m.Apply(rec, ProfileConferenceStatus)
	require.NoError(t, err)
	assert.Equal(t, "id1", props["ID"])
	assert.Equal(t, "Conf1", props["Name"])
	assert.Equal(t, "false", props["IsLocked"])
	assert.Equal(t, "10.0.0.1", props["Node"])
	assert.Equal(t, "meet.alice", props["First"])
	_, ok := props["Tag"]
	assert.False(t, ok)
}

func TestApplyNumbers(t *testing.T) {
	m := NewYAMLMapper(Default())
	rec := pexip.Record{"port_total": json.Number("250"), "port_count": json.Number("17")}
	props, err := m.Apply(rec, ProfileLicensingReport)
	require.NoError(t, err)
	assert.Equal(t, "250", props["PortTotal"])
	assert.Equal(t, "17", props["PortCount"])
}

func TestApplyUnknownProfile(t *testing.T) {
	m := NewYAMLMapper(Profiles{})
	_, err := m.Apply(pexip.Record{}, ProfileParticipant)
	require.Error(t, err)
}

func TestLoaderReloadSwapsRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mapping.yml")
	require.NoError(t, os.WriteFile(path, []byte("profiles:\n  Participant:\n    Name: display_name\n"), 0o644))

	l, err := NewLoader(path, nil)
	require.NoError(t, err)

	rec := pexip.Record{"display_name": "Alice", "role": "chair"}
	props, err := l.Mapper().Apply(rec, ProfileParticipant)
	require.NoError(t, err)
	assert.Equal(t, "Alice", props["Name"])

	changed := make(chan Profiles, 1)
	l.OnChange(func(p Profiles) { changed <- p })

	require.NoError(t, os.WriteFile(path, []byte("profiles:\n  Participant:\n    Role: role\n"), 0o644))
	_, err = l.Reload()
	require.NoError(t, err)

	select {
	case p := <-changed:
		assert.Contains(t, p[ProfileParticipant], "Role")
	case <-time.After(time.Second):
		t.Fatal("callback not invoked")
	}
	props, err = l.Mapper().Apply(rec, ProfileParticipant)
	require.NoError(t, err)
	assert.Equal(t, "chair", props["Role"])
	assert.NotContains(t, props, "Name")
}

func TestLoaderKeepsRulesOnBadReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mapping.yml")
	require.NoError(t, os.WriteFile(path, []byte("profiles:\n  Participant:\n    Name: display_name\n"), 0o644))
	l, err := NewLoader(path, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("profiles:\n  Nope:\n    X: x\n"), 0o644))
	_, err = l.Reload()
	require.Error(t, err)

	props, err := l.Mapper().Apply(pexip.Record{"display_name": "Bob"}, ProfileParticipant)
	require.NoError(t, err)
	assert.Equal(t, "Bob", props["Name"])
}

func TestLoaderWithoutPathUsesDefault(t *testing.T) {
	l, err := NewLoader("", nil)
	require.NoError(t, err)
	stop, err := l.Watch()
	require.NoError(t, err)
	stop()

	props, err := l.Mapper().Apply(pexip.Record{"address": "10.0.0.1"}, ProfileNodeConfig)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", props["Configuration#NodeAddress"])
}
