// Package encode turns token id sequences into dense vectors. It is the
// boundary the search engine's scoring policies sit behind: a policy
// embeds action histories before scoring continuations.
package encode

import (
	"fmt"
	"sort"
)

// TokenEmbedder embeds a sequence of token ids, one vector per token.
type TokenEmbedder interface {
	// Dim is the length of each output vector.
	Dim() int

	// Embed returns one Dim-length vector per input id.
	Embed(ids []int) ([][]float64, error)
}

// Embedding is a lookup-table TokenEmbedder. Unknown ids embed to the
// zero vector.
type Embedding struct {
	dim     int
	weights map[int][]float64
}

// NewEmbedding builds a lookup table. Every weight vector must have the
// given dimension.
func NewEmbedding(dim int, weights map[int][]float64) (*Embedding, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", dim)
	}
	for id, vector := range weights {
		if len(vector) != dim {
			return nil, fmt.Errorf("weight vector for token %d has dimension %d, want %d", id, len(vector), dim)
		}
	}
	return &Embedding{dim: dim, weights: weights}, nil
}

// Dim returns the embedding dimension.
func (e *Embedding) Dim() int { return e.dim }

// Embed looks up each id's vector.
func (e *Embedding) Embed(ids []int) ([][]float64, error) {
	out := make([][]float64, len(ids))
	for i, id := range ids {
		vector, ok := e.weights[id]
		if !ok {
			vector = make([]float64, e.dim)
		}
		out[i] = vector
	}
	return out, nil
}

// Composite wraps a collection of named TokenEmbedders. Each embedder
// consumes the field of the same name, and the per-token results are
// concatenated in sorted name order, so the layout is deterministic.
type Composite struct {
	embedders map[string]TokenEmbedder
	order     []string
}

// NewComposite creates a composite over the given named embedders.
func NewComposite(embedders map[string]TokenEmbedder) (*Composite, error) {
	if len(embedders) == 0 {
		return nil, fmt.Errorf("at least one embedder is required")
	}
	order := make([]string, 0, len(embedders))
	for name := range embedders {
		order = append(order, name)
	}
	sort.Strings(order)
	return &Composite{embedders: embedders, order: order}, nil
}

// Dim returns the concatenated output dimension.
func (c *Composite) Dim() int {
	total := 0
	for _, embedder := range c.embedders {
		total += embedder.Dim()
	}
	return total
}

// Embed embeds every named field and concatenates the results per
// token. The field names must match the embedder names exactly, and all
// fields must have the same token count.
func (c *Composite) Embed(fields map[string][]int) ([][]float64, error) {
	if len(fields) != len(c.embedders) {
		return nil, fmt.Errorf("mismatched fields: got %d, want %d", len(fields), len(c.embedders))
	}

	numTokens := -1
	parts := make([][][]float64, 0, len(c.order))
	for _, name := range c.order {
		ids, ok := fields[name]
		if !ok {
			return nil, fmt.Errorf("missing field %q", name)
		}
		if numTokens == -1 {
			numTokens = len(ids)
		} else if len(ids) != numTokens {
			return nil, fmt.Errorf("field %q has %d tokens, want %d", name, len(ids), numTokens)
		}
		vectors, err := c.embedders[name].Embed(ids)
		if err != nil {
			return nil, fmt.Errorf("embedding field %q: %w", name, err)
		}
		parts = append(parts, vectors)
	}

	out := make([][]float64, numTokens)
	for token := 0; token < numTokens; token++ {
		vector := make([]float64, 0, c.Dim())
		for _, part := range parts {
			vector = append(vector, part[token]...)
		}
		out[token] = vector
	}
	return out, nil
}
