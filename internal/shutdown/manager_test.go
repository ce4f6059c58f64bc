package shutdown

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"op2mapviewer/internal/logger"
)

func TestManager_ReverseOrderOnce(t *testing.T) {
	m := NewManager(logger.Nop())

	var mu sync.Mutex
	var order []string
	record := func(name string) Func {
		return func() {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
		}
	}
	m.Register("repository", record("repository"))
	m.Register("tilesets", record("tilesets"))
	m.Register("window", record("window"))

	m.Shutdown()
	m.Shutdown()

	assert.Equal(t, []string{"window", "tilesets", "repository"}, order)
	assert.Error(t, m.Context().Err())
	select {
	case <-m.Done():
	default:
		t.Fatal("done channel still open")
	}
}

func TestManager_TimeoutAndPanic(t *testing.T) {
	m := NewManager(logger.Nop())
	m.SetTimeout(20 * time.Millisecond)

	block := make(chan struct{})
	defer close(block)

	reached := false
	m.Register("first", Func(func() { reached = true }))
	m.Register("stuck", Func(func() { <-block }))
	m.Register("broken", Func(func() { panic("boom") }))

	start := time.Now()
	m.Shutdown()

	assert.True(t, reached)
	assert.Less(t, time.Since(start), 5*time.Second)
}
