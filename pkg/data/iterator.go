// Package data provides batching utilities for training scoring
// policies: instances are bucketed by sequence length so that batches
// pad minimally, with optional epoch tracking per dataset.
package data

import (
	"fmt"
	"math/rand"
	"sort"
)

// Instance is one training example: an action sequence plus the epoch
// it was emitted in (filled by the iterator when epoch tracking is on).
type Instance struct {
	Actions []int `json:"actions"`
	Epoch   int   `json:"epoch"`
}

// BucketIterator groups instances into batches of similar length.
// Sorting by length keeps padding small when the batch is turned into a
// tensor downstream; the padding noise keeps batch composition from
// being identical across epochs.
//
// A BucketIterator is stateful (epoch counters, RNG) and not safe for
// concurrent use.
type BucketIterator struct {
	batchSize         int
	paddingNoise      float64
	biggestBatchFirst bool
	trackEpochs       bool
	epochs            map[string]int
	rng               *rand.Rand
}

// IteratorOption configures a BucketIterator.
type IteratorOption func(*BucketIterator)

// WithPaddingNoise perturbs sequence lengths by up to the given fraction
// when sorting (default 0.1). Zero disables the noise entirely.
func WithPaddingNoise(noise float64) IteratorOption {
	return func(it *BucketIterator) {
		it.paddingNoise = noise
	}
}

// WithBiggestBatchFirst moves the batch with the longest sequences to
// the front, so memory issues surface on the first batch rather than
// deep into an epoch.
func WithBiggestBatchFirst() IteratorOption {
	return func(it *BucketIterator) {
		it.biggestBatchFirst = true
	}
}

// WithEpochTracking stamps each emitted instance with the current epoch
// number of its dataset. Epochs are counted per dataset key, since the
// same iterator is typically used for both training and validation sets.
func WithEpochTracking() IteratorOption {
	return func(it *BucketIterator) {
		it.trackEpochs = true
	}
}

// WithSeed makes the padding noise deterministic.
func WithSeed(seed int64) IteratorOption {
	return func(it *BucketIterator) {
		it.rng = rand.New(rand.NewSource(seed))
	}
}

// NewBucketIterator creates a bucketing iterator with the given batch
// size.
func NewBucketIterator(batchSize int, opts ...IteratorOption) (*BucketIterator, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}
	it := &BucketIterator{
		batchSize:    batchSize,
		paddingNoise: 0.1,
		epochs:       make(map[string]int),
		rng:          rand.New(rand.NewSource(rand.Int63())),
	}
	for _, opt := range opts {
		opt(it)
	}
	return it, nil
}

// Epoch returns how many times Batches has been called for a dataset.
func (it *BucketIterator) Epoch(dataset string) int {
	return it.epochs[dataset]
}

// Batches sorts the instances by (noisy) length, chunks them into
// batches, and advances the dataset's epoch counter. The input slice is
// not modified.
func (it *BucketIterator) Batches(dataset string, instances []Instance) [][]Instance {
	epoch := it.epochs[dataset]
	it.epochs[dataset]++

	ordered := make([]Instance, len(instances))
	copy(ordered, instances)
	if it.trackEpochs {
		for i := range ordered {
			ordered[i].Epoch = epoch
		}
	}

	noisy := make([]float64, len(ordered))
	for i, instance := range ordered {
		length := float64(len(instance.Actions))
		if it.paddingNoise > 0 {
			length += length * it.paddingNoise * (2*it.rng.Float64() - 1)
		}
		noisy[i] = length
	}
	indices := make([]int, len(ordered))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(i, j int) bool {
		return noisy[indices[i]] < noisy[indices[j]]
	})

	var batches [][]Instance
	for start := 0; start < len(indices); start += it.batchSize {
		end := start + it.batchSize
		if end > len(indices) {
			end = len(indices)
		}
		batch := make([]Instance, 0, end-start)
		for _, idx := range indices[start:end] {
			batch = append(batch, ordered[idx])
		}
		batches = append(batches, batch)
	}

	// The longest sequences sit in the last batch after sorting.
	if it.biggestBatchFirst && len(batches) > 1 {
		last := batches[len(batches)-1]
		for i := len(batches) - 1; i > 0; i-- {
			batches[i] = batches[i-1]
		}
		batches[0] = last
	}
	return batches
}
