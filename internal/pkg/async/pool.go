// Package async fans independent tasks out over a bounded set of workers
// and collects whatever finishes before the context expires.
package async

import (
	"context"
)

// Task is one named unit of work.
type Task[T any] struct {
	Name    string
	Execute func() (T, error)
}

// Result pairs a task's name with its outcome.
type Result[T any] struct {
	Name string
	Data T
	Err  error
}

// Pool runs tasks on at most workerCount goroutines.
type Pool[T any] struct {
	workerCount int
}

func NewPool[T any](workerCount int) *Pool[T] {
	return &Pool[T]{workerCount: workerCount}
}

// Execute runs all tasks and returns results keyed by task name. When the
// context expires first, the map holds only the tasks that completed in
// time; the remaining workers drain on their own since both channels are
// buffered for the full task list.
func (p *Pool[T]) Execute(ctx context.Context, tasks []Task[T]) map[string]Result[T] {
	taskCh := make(chan Task[T], len(tasks))
	resultCh := make(chan Result[T], len(tasks))
	for _, task := range tasks {
		taskCh <- task
	}
	close(taskCh)

	workers := p.workerCount
	if workers > len(tasks) {
		workers = len(tasks)
	}
	for i := 0; i < workers; i++ {
		go func() {
			for task := range taskCh {
				data, err := task.Execute()
				resultCh <- Result[T]{Name: task.Name, Data: data, Err: err}
			}
		}()
	}

	results := make(map[string]Result[T], len(tasks))
	for i := 0; i < len(tasks); i++ {
		select {
		case r := <-resultCh:
			results[r.Name] = r
		case <-ctx.Done():
			return results
		}
	}
	return results
}
