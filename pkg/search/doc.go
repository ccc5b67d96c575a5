/*
Package search implements batched beam search over an arbitrary
state-transition system.

The engine is generic over the concrete state representation: anything
implementing State can be searched, and the scoring/expansion logic is
supplied by a TransitionFunction. Grouping many hypotheses into a single
State value lets the transition function score all of them in one call
(useful when scoring is vectorized or remote), while the engine keeps
track of which batch instance each hypothesis descends from.

The transition function must return its candidates sorted by
non-increasing score. The engine relies on that ordering for per-step
pruning and never re-sorts inside the loop; the only sort happens once,
when ranking the finished states at the end of a search.

Constrained decoding is supported by building the engine with an initial
action sequence: while the current history is still a prefix of that
sequence, only the next action of the sequence is allowed. Once the
history leaves the constrained prefix, the search continues
unconstrained.
*/
package search
