package join

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pexipmon/internal/domain"
	"pexipmon/internal/mapping"
	"pexipmon/internal/pexip"
)

func testMapper() *mapping.YAMLMapper {
	return mapping.NewYAMLMapper(mapping.Profiles{
		mapping.ProfileConferenceStatus: mapping.Rules{
			"ID":          "id",
			"Name":        "name",
			"NodeAddress": "nodeAddress",
			"Status":      "status",
		},
		mapping.ProfileConferenceShard: mapping.Rules{
			"Status":      "status",
			"NodeAddress": "node",
		},
	})
}

func TestMergeLastWriterWins(t *testing.T) {
	a := domain.Properties{"x": "1", "y": "2"}
	b := domain.Properties{"y": "3", "z": "4"}
	got := Merge(a, b)
	assert.Equal(t, domain.Properties{"x": "1", "y": "3", "z": "4"}, got)
	for k := range b {
		assert.Equal(t, b[k], got[k])
	}
	assert.Equal(t, domain.Properties{"k": "v"}, Merge(nil, domain.Properties{"k": "v"}))
}

func TestJoinConferenceWithShard(t *testing.T) {
	confs := pexip.Collection{Objects: []pexip.Record{
		{"name": "Conf1", "nodeAddress": "10.0.0.1", "id": "id1"},
	}}
	shards := pexip.Collection{Objects: []pexip.Record{
		{"id": "id1", "status": "active"},
	}}

	got, err := Join(testMapper(), confs, shards, Spec{
		PrimaryProfile:   mapping.ProfileConferenceStatus,
		SecondaryProfile: mapping.ProfileConferenceShard,
		MatchField:       "ID",
		IdentityField:    "id",
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "active", got[0]["Status"])
	assert.Equal(t, "Conf1", got[0]["Name"])
	assert.Equal(t, "10.0.0.1", got[0]["NodeAddress"])
	assert.Equal(t, "id1", got[0]["ID"])
}

func TestJoinExactMatchOnly(t *testing.T) {
	confs := pexip.Collection{Objects: []pexip.Record{{"id": "node-a", "name": "c"}}}
	shards := pexip.Collection{Objects: []pexip.Record{
		{"id": "node-a ", "status": "trailing"},
		{"id": "Node-A", "status": "case"},
		{"id": "node", "status": "prefix"},
	}}
	got, err := Join(testMapper(), confs, shards, Spec{
		PrimaryProfile:   mapping.ProfileConferenceStatus,
		SecondaryProfile: mapping.ProfileConferenceShard,
		MatchField:       "ID",
		IdentityField:    "id",
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotContains(t, got[0], "Status")
	assert.Equal(t, domain.Properties{"ID": "node-a", "Name": "c"}, got[0])
}

func TestJoinLastMatchWins(t *testing.T) {
	confs := pexip.Collection{Objects: []pexip.Record{{"id": "id1", "status": "own"}}}
	shards := pexip.Collection{Objects: []pexip.Record{
		{"id": "id1", "status": "first", "node": "10.0.0.1"},
		{"id": "id1", "status": "second"},
	}}
	got, err := Join(testMapper(), confs, shards, Spec{
		PrimaryProfile:   mapping.ProfileConferenceStatus,
		SecondaryProfile: mapping.ProfileConferenceShard,
		MatchField:       "ID",
		IdentityField:    "id",
	})
	require.NoError(t, err)
	assert.Equal(t, "second", got[0]["Status"])
	assert.Equal(t, "10.0.0.1", got[0]["NodeAddress"])
}

func TestJoinRejectsEmptyFields(t *testing.T) {
	_, err := Join(testMapper(), pexip.Collection{}, pexip.Collection{}, Spec{})
	require.Error(t, err)
}

func TestMergeNodeConfig(t *testing.T) {
	nodes := []domain.Properties{
		{"Status#Name": "node-1", "Status#ID": "1"},
		{"Status#Name": "node-2", "Status#ID": "2"},
	}
	configs := []domain.Properties{
		{"Configuration#Name": "node-1", "Configuration#NodeAddress": "10.0.0.1"},
		{"Configuration#Name": "NODE-2", "Configuration#NodeAddress": "10.0.0.2"},
	}
	got := MergeNodeConfig(nodes, configs)
	require.Len(t, got, 2)
	assert.Equal(t, "10.0.0.1", got[0]["Configuration#NodeAddress"])
	assert.NotContains(t, got[1], "Configuration#NodeAddress")
	assert.NotContains(t, nodes[0], "Configuration#NodeAddress")
}

func TestAttachConferences(t *testing.T) {
	nodes := NodeEntities([]domain.Properties{
		{"Status#ID": "1", "Status#Name": "node-1", "Configuration#NodeAddress": "10.0.0.1"},
		{"Status#ID": "2", "Status#Name": "node-2", "Configuration#NodeAddress": "10.0.0.2"},
	})
	conferences := []domain.Properties{
		{"ID": "c1", "Name": "Weekly", "NodeAddress": "10.0.0.1"},
		{"ID": "c2", "Name": "Standup", "NodeAddress": "10.0.0.1"},
		{"ID": "c3", "Name": "Other", "NodeAddress": "10.0.0.3"},
	}
	participants := []domain.Properties{
		{"DisplayName": "Alice", "Conference": "Weekly"},
		{"DisplayName": "Bob", "Conference": "Weekly"},
		{"DisplayName": "Carol", "Conference": "weekly"},
		{"DisplayName": "Dave", "Conference": "Standup"},
	}

	got := AttachConferences(nodes, conferences, participants, AttachOptions{ExportParticipants: true})
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "node-1", first.Name)
	assert.Equal(t, "c1", first.Properties["Conference:Weekly#ID"])
	assert.Equal(t, "2", first.Properties["Conference:Weekly#ParticipantsCount"])
	assert.Equal(t, "1", first.Properties["Conference:Standup#ParticipantsCount"])
	assert.NotContains(t, first.Properties, "Conference:Other#ID")
	assert.Len(t, first.Controls, 4)
	assert.Equal(t, "Conference:Weekly#Disconnect", first.Controls[0].Name)
	assert.Equal(t, domain.ControlButton, first.Controls[0].Type)

	assert.Empty(t, got[1].Controls)
	assert.NotContains(t, nodes[0].Properties, "Conference:Weekly#ID")
}

func TestAttachWithoutExportControl(t *testing.T) {
	nodes := NodeEntities([]domain.Properties{{"Status#Name": "n", "Configuration#NodeAddress": "a"}})
	got := AttachConferences(nodes, []domain.Properties{{"Name": "C", "NodeAddress": "a"}}, nil, AttachOptions{})
	require.Len(t, got[0].Controls, 1)
	assert.Equal(t, "0", got[0].Properties["Conference:C#ParticipantsCount"])
	assert.NotContains(t, got[0].Properties, "Conference:C#ExportParticipants")
}
