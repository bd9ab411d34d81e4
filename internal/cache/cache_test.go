package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pexipmon/internal/domain"
)

func TestStoreIdleLookupFails(t *testing.T) {
	s := NewStore()
	assert.False(t, s.Populated())
	_, err := s.Lookup(domain.KindConference, "Weekly")
	require.ErrorIs(t, err, ErrUnknownEntity)
}

func TestBuildAndSwap(t *testing.T) {
	b := NewBuilder()
	b.PutAll(domain.KindConference, []domain.Properties{
		{"Name": "Weekly", "ID": "c1"},
		{"Name": "", "ID": "c2"},
	}, "Name", "ID")
	b.Put(domain.KindParticipant, "Alice", "p1")

	s := NewStore()
	s.Swap(b.Build("cycle-1", time.Now()))
	require.True(t, s.Populated())

	id, err := s.Lookup(domain.KindConference, "Weekly")
	require.NoError(t, err)
	assert.Equal(t, "c1", id)
	assert.Equal(t, 1, s.Current().Len(domain.KindConference))

	id, err = s.Lookup(domain.KindParticipant, "Alice")
	require.NoError(t, err)
	assert.Equal(t, "p1", id)

	_, err = s.Lookup(domain.KindParticipant, "alice")
	require.ErrorIs(t, err, ErrUnknownEntity)
}

func TestSwapReplacesWholeSnapshot(t *testing.T) {
	s := NewStore()
	first := NewBuilder()
	first.Put(domain.KindConference, "Old", "c0")
	s.Swap(first.Build("1", time.Now()))

	second := NewBuilder()
	second.Put(domain.KindConference, "New", "c9")
	s.Swap(second.Build("2", time.Now()))

	_, err := s.Lookup(domain.KindConference, "Old")
	require.ErrorIs(t, err, ErrUnknownEntity)
	id, err := s.Lookup(domain.KindConference, "New")
	require.NoError(t, err)
	assert.Equal(t, "c9", id)
	assert.Equal(t, "2", s.Current().CycleID)
}

func TestConcurrentReadersSeeCompleteSnapshots(t *testing.T) {
	s := NewStore()
	build := func(id string) *Snapshot {
		b := NewBuilder()
		b.Put(domain.KindConference, "A", id)
		b.Put(domain.KindConference, "B", id)
		return b.Build(id, time.Now())
	}
	s.Swap(build("0"))

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := s.Current()
				a, errA := snap.Lookup(domain.KindConference, "A")
				b, errB := snap.Lookup(domain.KindConference, "B")
				if errA != nil || errB != nil || a != b {
					t.Errorf("inconsistent snapshot: %s %s", a, b)
					return
				}
			}
		}()
	}
	for i := 1; i <= 100; i++ {
		s.Swap(build(string(rune('0' + i%10))))
	}
	close(stop)
	wg.Wait()
}
