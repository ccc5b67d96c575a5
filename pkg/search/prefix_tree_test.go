package search_test

import (
	"testing"

	"github.com/driftml/lattice/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructPrefixTree(t *testing.T) {
	trees := search.ConstructPrefixTree([][][]int{
		{{3, 1, 4}},
		{{2, 7}, {2, 9}},
	})
	require.Len(t, trees, 2)

	// Single target sequence: every prefix maps to the next action.
	assert.Equal(t, map[string]int{
		"":    3,
		"3":   1,
		"3,1": 4,
	}, trees[0])

	// Diverging alternatives: the first sequence wins at the shared prefix.
	assert.Equal(t, map[string]int{
		"":  2,
		"2": 7,
	}, trees[1])
}

func TestConstructPrefixTreeEmpty(t *testing.T) {
	trees := search.ConstructPrefixTree([][][]int{{}})
	require.Len(t, trees, 1)
	assert.Empty(t, trees[0])
}
