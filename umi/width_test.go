package umi

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWidthFreeze(t *testing.T) {
	reset()
	defer reset()

	_, err := DefaultEncoder()
	assert.Error(t, err)

	require.NoError(t, SetWidth(8))
	require.NoError(t, SetWidth(10))
	assert.Error(t, SetWidth(33))
	assert.Equal(t, 10, Width())
	assert.False(t, Frozen())

	Freeze()
	assert.True(t, Frozen())
	assert.Error(t, SetWidth(12))
	assert.Equal(t, 10, Width())

	e, err := DefaultEncoder()
	require.NoError(t, err)
	assert.Equal(t, 10, e.K())
}

func TestWidthConcurrentReaders(t *testing.T) {
	reset()
	defer reset()
	require.NoError(t, SetWidth(12))
	Freeze()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if Width() != 12 {
					t.Error("width changed after freeze")
					return
				}
			}
		}()
	}
	wg.Wait()
}
