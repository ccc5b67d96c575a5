// Package ports defines the interfaces between the lattice core and its
// adapters (persistence, transport). Each port ships with a reusable
// contract test suite so adapters can prove compliance.
package ports
