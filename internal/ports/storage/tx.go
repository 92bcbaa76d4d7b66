package storage

import "context"

// TxRunner ejecuta fn dentro de un scope transaccional explícito del store.
// Cada operación del coordinador abre su propio scope; nunca hay transacción
// ambiente/global.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
