// Command atomics is a guest program for the emulator: built for riscv64 its runtime
// and sync/atomic calls compile to LR/SC and AMO instructions.
//
//	GOOS=linux GOARCH=riscv64 go build -o ../bin/atomics .
package main

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
)

const workers = 4

func main() {
	var (
		counter atomic.Uint64
		flags   atomic.Uint32
		maxSeen atomic.Int64
		owner   atomic.Pointer[string]
		wg      sync.WaitGroup
		mu      sync.Mutex
		total   int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			name := fmt.Sprintf("worker-%d", id)
			owner.CompareAndSwap(nil, &name)
			for j := 0; j < 100; j++ {
				counter.Add(1)
				v := int64(id*100 + j)
				for {
					cur := maxSeen.Load()
					if v <= cur || maxSeen.CompareAndSwap(cur, v) {
						break
					}
				}
			}
			flags.Or(1 << id)
			mu.Lock()
			total += id
			mu.Unlock()
		}(i)
	}
	wg.Wait()
	prev := flags.Swap(0)

	fmt.Printf("counter=%d flags=%b max=%d owner=%s total=%d\n", counter.Load(), prev, maxSeen.Load(), *owner.Load(), total)
	if counter.Load() != workers*100 || prev != 1<<workers-1 || maxSeen.Load() != (workers-1)*100+99 {
		os.Exit(1)
	}
	os.Exit(0)
}
