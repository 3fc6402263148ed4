package memory_test

import (
	"testing"

	"github.com/aretw0/gibbs/pkg/adapters/memory"
	"github.com/aretw0/gibbs/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunRunStoreContract(t, store)
}
