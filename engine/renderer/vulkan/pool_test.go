package vulkan

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeCallSerializes(t *testing.T) {
	pool := NewVulkanLockPool()
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pool.SafeCall(PipelineManagement, func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestSafeCallReturnsError(t *testing.T) {
	pool := NewVulkanLockPool()
	want := errors.New("boom")
	assert.ErrorIs(t, pool.SafeCall(ResourceManagement, func() error { return want }), want)
	// the lock is released after an error
	assert.NoError(t, pool.SafeCall(ResourceManagement, func() error { return nil }))
}

func TestSafeQueueCallUnknownFamily(t *testing.T) {
	pool := NewVulkanLockPool()
	called := false
	assert.NoError(t, pool.SafeQueueCall(7, func() error { called = true; return nil }))
	assert.True(t, called)
}
