package memory_test

import (
	"testing"

	"github.com/driftml/lattice/internal/adapters/memory"
	"github.com/driftml/lattice/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.New()
	ports.RunRunStoreContract(t, store)
}
