package encode_test

import (
	"testing"

	"github.com/driftml/lattice/pkg/encode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddingLookup(t *testing.T) {
	embedding, err := encode.NewEmbedding(2, map[int][]float64{
		1: {0.1, 0.2},
		2: {0.3, 0.4},
	})
	require.NoError(t, err)

	vectors, err := embedding.Embed([]int{1, 2, 99})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, []float64{0.1, 0.2}, vectors[0])
	assert.Equal(t, []float64{0.3, 0.4}, vectors[1])
	assert.Equal(t, []float64{0, 0}, vectors[2], "unknown ids embed to zero")
}

func TestNewEmbeddingValidation(t *testing.T) {
	_, err := encode.NewEmbedding(0, nil)
	assert.Error(t, err)

	_, err = encode.NewEmbedding(2, map[int][]float64{1: {0.1}})
	assert.Error(t, err)
}

func TestCompositeConcatenatesInNameOrder(t *testing.T) {
	words, err := encode.NewEmbedding(2, map[int][]float64{1: {0.1, 0.2}})
	require.NoError(t, err)
	chars, err := encode.NewEmbedding(1, map[int][]float64{1: {0.9}})
	require.NoError(t, err)

	composite, err := encode.NewComposite(map[string]encode.TokenEmbedder{
		"words": words,
		"chars": chars,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, composite.Dim())

	vectors, err := composite.Embed(map[string][]int{
		"words": {1},
		"chars": {1},
	})
	require.NoError(t, err)
	require.Len(t, vectors, 1)

	// "chars" sorts before "words".
	assert.Equal(t, []float64{0.9, 0.1, 0.2}, vectors[0])
}

func TestCompositeFieldMismatch(t *testing.T) {
	words, err := encode.NewEmbedding(1, nil)
	require.NoError(t, err)

	composite, err := encode.NewComposite(map[string]encode.TokenEmbedder{"words": words})
	require.NoError(t, err)

	_, err = composite.Embed(map[string][]int{"tokens": {1}})
	assert.Error(t, err)

	_, err = composite.Embed(map[string][]int{"words": {1}, "extra": {1}})
	assert.Error(t, err)
}

func TestCompositeTokenCountMismatch(t *testing.T) {
	a, err := encode.NewEmbedding(1, nil)
	require.NoError(t, err)
	b, err := encode.NewEmbedding(1, nil)
	require.NoError(t, err)

	composite, err := encode.NewComposite(map[string]encode.TokenEmbedder{"a": a, "b": b})
	require.NoError(t, err)

	_, err = composite.Embed(map[string][]int{"a": {1, 2}, "b": {1}})
	assert.Error(t, err)
}
