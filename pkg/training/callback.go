// Package training provides the callback hook system used to observe
// and steer a training loop: callbacks fire on lifecycle events in
// priority order and may carry checkpointable state.
package training

import "fmt"

// Event identifies a point in the training lifecycle.
type Event string

const (
	EventTrainingStart Event = "training_start"
	EventEpochStart    Event = "epoch_start"
	EventBatchStart    Event = "batch_start"
	EventBatchEnd      Event = "batch_end"
	EventEpochEnd      Event = "epoch_end"
	EventTrainingEnd   Event = "training_end"
)

// State is the mutable trainer state passed to every callback.
type State struct {
	Epoch   int
	Batch   int
	Metrics map[string]float64

	// ShouldStop requests an early exit from the training loop. Any
	// callback may set it; the trainer checks it between events.
	ShouldStop bool
}

// Callback observes training events. Lower priority fires first.
type Callback interface {
	Priority() int
	Handle(event Event, state *State) error

	// TrainingState returns state to checkpoint, keyed uniquely to this
	// callback. Stateless callbacks return an empty map.
	TrainingState() map[string]any

	// RestoreTrainingState rehydrates the callback from a checkpoint
	// previously produced by TrainingState (possibly merged with other
	// callbacks' entries).
	RestoreTrainingState(saved map[string]any)
}

// BaseCallback provides default no-op implementations for everything
// except Handle. Embed it to implement simple callbacks.
type BaseCallback struct{}

func (BaseCallback) Priority() int                       { return 0 }
func (BaseCallback) TrainingState() map[string]any       { return map[string]any{} }
func (BaseCallback) RestoreTrainingState(map[string]any) {}

// Handler fires callbacks in stable priority order.
type Handler struct {
	callbacks []Callback
}

// NewHandler creates a handler over the given callbacks. Registration
// order breaks priority ties.
func NewHandler(callbacks ...Callback) *Handler {
	h := &Handler{}
	for _, cb := range callbacks {
		h.Register(cb)
	}
	return h
}

// Register inserts a callback keeping the list sorted by priority,
// after existing callbacks of the same priority.
func (h *Handler) Register(cb Callback) {
	insert := len(h.callbacks)
	for i, existing := range h.callbacks {
		if existing.Priority() > cb.Priority() {
			insert = i
			break
		}
	}
	h.callbacks = append(h.callbacks, nil)
	copy(h.callbacks[insert+1:], h.callbacks[insert:])
	h.callbacks[insert] = cb
}

// Fire dispatches the event to every callback in order. The first error
// aborts the dispatch.
func (h *Handler) Fire(event Event, state *State) error {
	for _, cb := range h.callbacks {
		if err := cb.Handle(event, state); err != nil {
			return fmt.Errorf("callback failed on %s: %w", event, err)
		}
	}
	return nil
}

// Checkpoint merges the training state of every callback into one map.
func (h *Handler) Checkpoint() map[string]any {
	merged := make(map[string]any)
	for _, cb := range h.callbacks {
		for key, value := range cb.TrainingState() {
			merged[key] = value
		}
	}
	return merged
}

// Restore hands the full checkpoint to every callback; each pulls out
// the parts it owns.
func (h *Handler) Restore(saved map[string]any) {
	for _, cb := range h.callbacks {
		cb.RestoreTrainingState(saved)
	}
}
