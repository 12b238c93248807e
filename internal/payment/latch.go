package payment

import "sync/atomic"

// Latch не допускает параллельных попыток оплаты в одной сессии.
// Повторная попытка не ставится в очередь, а отклоняется.
type Latch struct {
	busy atomic.Bool
}

// TryAcquire захватывает защёлку, если она свободна.
func (l *Latch) TryAcquire() bool {
	return l.busy.CompareAndSwap(false, true)
}

// Release освобождает защёлку.
func (l *Latch) Release() {
	l.busy.Store(false)
}

// Busy сообщает, выполняется ли сейчас оплата.
func (l *Latch) Busy() bool {
	return l.busy.Load()
}
