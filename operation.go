package smolnet

import (
	"context"
	"errors"
	"sync"
)

// ErrOperationStarted is returned when an Operation is executed twice.
var ErrOperationStarted = errors.New("operation has already been executed")

// Operation is a cancellable handle over the dispatch of one endpoint. An
// operation is meant to be executed once.
type Operation[T any] struct {
	ep Endpoint

	lk        sync.Mutex
	task      Task
	started   bool
	cancelled bool
	completed bool
}

func NewOperation[T any](ep Endpoint) *Operation[T] {
	return &Operation[T]{ep: ep}
}

func (o *Operation[T]) Endpoint() Endpoint {
	return o.ep
}

// Execute dispatches the endpoint with d. done receives the outcome, unless the
// operation is cancelled and its session drops the transfer silently. Once
// Cancel was called, done only ever receives a failure wrapping
// context.Canceled.
func (o *Operation[T]) Execute(ctx context.Context, d *Dispatcher, done func(*Result[T])) error {
	o.lk.Lock()
	if o.started {
		o.lk.Unlock()
		return ErrOperationStarted
	}
	o.started = true
	o.lk.Unlock()

	task := Dispatch(ctx, d, o.ep, func(res *Result[T]) {
		o.lk.Lock()
		cancelled := o.cancelled
		o.completed = true
		o.task = nil
		o.lk.Unlock()

		if cancelled && !errors.Is(res.Error(), context.Canceled) {
			res = errorResult[T](newError(KindInvalidResponse, nil, context.Canceled))
		}
		done(res)
	})

	o.lk.Lock()
	if o.completed {
		o.lk.Unlock()
		return nil
	}
	o.task = task
	cancelNow := o.cancelled
	o.lk.Unlock()

	if cancelNow {
		// Cancel was called while the task was being created
		task.Cancel()
	}
	return nil
}

// Do executes the operation and waits for its outcome.
func (o *Operation[T]) Do(ctx context.Context, d *Dispatcher) *Result[T] {
	ch := make(chan *Result[T], 1)
	err := o.Execute(ctx, d, func(res *Result[T]) {
		ch <- res
	})
	if err != nil {
		return errorResult[T](newError(KindUnknown, nil, err))
	}

	select {
	case res := <-ch:
		return res
	case <-ctx.Done():
		o.Cancel()
		return errorResult[T](newError(KindInvalidResponse, nil, ctx.Err()))
	}
}

// Cancel aborts the transfer if it is still running. It does nothing if the
// operation has not been executed or has already completed.
func (o *Operation[T]) Cancel() {
	o.lk.Lock()
	if !o.started || o.completed || o.cancelled {
		o.lk.Unlock()
		return
	}
	o.cancelled = true
	task := o.task
	o.lk.Unlock()

	if task != nil {
		task.Cancel()
	}
}
