package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// The dispatcher builds a localizer from every concurrent candidate
// goroutine; without an initialized bundle this must not race.
func TestNewLocalizerConcurrentWithoutInit(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NotNil(t, NewLocalizer(""))
		}()
	}
	wg.Wait()
}
