package payment

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestLatch_Exclusive(t *testing.T) {
	var l Latch

	if !l.TryAcquire() {
		t.Fatalf("first acquire must succeed")
	}
	if l.TryAcquire() {
		t.Fatalf("second acquire must fail while held")
	}

	l.Release()
	if l.Busy() {
		t.Fatalf("latch must be free after release")
	}
	if !l.TryAcquire() {
		t.Fatalf("acquire after release must succeed")
	}
}

func TestLatch_ConcurrentAcquire(t *testing.T) {
	var (
		l        Latch
		acquired atomic.Int32
		wg       sync.WaitGroup
	)

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.TryAcquire() {
				acquired.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := acquired.Load(); got != 1 {
		t.Fatalf("acquired = %d, want 1", got)
	}
}
