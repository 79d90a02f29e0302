package utils

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ParallelTask is a unit of work run by RunParallelTasks.
type ParallelTask func(ctx context.Context) error

// RunParallelTasks runs every task in its own goroutine, waits for all of
// them and returns their errors joined. A panicking task is reported as an
// error. A nil result means every task succeeded.
func RunParallelTasks(ctx context.Context, tasks ...ParallelTask) error {
	var wg sync.WaitGroup
	errs := make([]error, len(tasks))

	wg.Add(len(tasks))
	for i, task := range tasks {
		go func(index int, t ParallelTask) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[index] = fmt.Errorf("task %d panicked: %v", index, r)
				}
			}()
			errs[index] = t(ctx)
		}(i, task)
	}

	wg.Wait()
	return errors.Join(errs...)
}
