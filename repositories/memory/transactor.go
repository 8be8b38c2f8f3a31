package memory

import (
	"context"
	"sync"

	"github.com/Dosada05/football-tournament/repositories"
)

// Transactor выполняет функции последовательно, по одной за раз. Отката нет,
// поэтому сервисы проверяют все условия до первой записи.
type Transactor struct {
	mu sync.Mutex
}

func NewTransactor() *Transactor {
	return &Transactor{}
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(nil)
}
