package core

import (
	"context"
	"errors"
	"sync"
)

// RunAll drives several independent controllers, one goroutine each.
// When any of them fails the rest are stopped at their next cycle boundary
// and the failures are returned joined. Passing the same controller twice
// fails with ErrAlreadyRunning.
func RunAll(ctx context.Context, controllers ...*Controller) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, c := range controllers {
		wg.Add(1)
		go func(c *Controller) {
			defer wg.Done()
			if err := c.Run(ctx); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				cancel()
			}
		}(c)
	}
	wg.Wait()
	return errors.Join(errs...)
}
