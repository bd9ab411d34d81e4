package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatch(t *testing.T) {
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, Batch([]int{1, 2, 3, 4, 5}, 2))
	assert.Equal(t, [][]int{{1, 2, 3}}, Batch([]int{1, 2, 3}, 0))
	assert.Nil(t, Batch([]int{}, 0))
}

func TestHashMapStable(t *testing.T) {
	a := HashMap(map[string]any{"name": "node-1", "participants": 3})
	b := HashMap(map[string]any{"participants": 3, "name": "node-1"})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, HashMap(map[string]any{"name": "node-1", "participants": 4}))
	assert.NotEqual(t, HashMap(map[string]any{"a": "bc"}), HashMap(map[string]any{"ab": "c"}))
}
