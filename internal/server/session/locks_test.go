package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex(t *testing.T) {
	t.Parallel()

	k := newKeyedMutex()
	counts := map[string]*int{"A": new(int), "B": new(int)}
	var wg sync.WaitGroup
	for i := range 50 {
		key := "A"
		if i%2 == 0 {
			key = "B"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock(key)
			*counts[key]++
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 25, *counts["A"])
	assert.Equal(t, 25, *counts["B"])
	assert.Zero(t, k.size())
}
