package memory

import (
	"context"
	"sync"
)

// TxRunner serializa las operaciones lógicas con un mutex global. No hay
// rollback: el store en memoria es para tests y desarrollo local.
type TxRunner struct {
	mu sync.Mutex
}

func NewTxRunner() *TxRunner {
	return &TxRunner{}
}

func (t *TxRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}
