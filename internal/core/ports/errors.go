package ports

import "errors"

// ErrAlreadyExists is returned by repository Add methods when a unique
// constraint rejects the row. Order creation treats this as losing the
// idempotency race and re-reads the winning order.
var ErrAlreadyExists = errors.New("aggregate already exists")
