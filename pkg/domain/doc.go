/*
Package domain defines the concrete transition system searched by the
lattice engine: scored transition tables, grouped hypothesis states, and
recorded search runs.

A Table is a fully enumerated, serializable transition policy: it maps
every action to a ranked list of scored continuations and marks a set of
actions as terminal. Tables implement search.TransitionFunction, so they
can be driven directly by the beam search engine. They are the bridge
between declarative YAML definitions (see LoadTable) and the generic
search core.
*/
package domain
