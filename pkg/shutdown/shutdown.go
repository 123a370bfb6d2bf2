package shutdown

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marcodd23/go-serving-stmt/pkg/logx"
	"github.com/pkg/errors"
)

// ErrCleanupTimeout is returned when the cleanup callback outlives its deadline.
var ErrCleanupTimeout = errors.New("cleanup deadline exceeded")

// WaitForShutdown blocks until SIGINT or SIGTERM is received, or rootCtx is done, then runs
// cleanupCallback with a context bounded by timeoutMilli.
//
// Usage:
//
//	shutdown.WaitForShutdown(ctx, 5000, func(timeoutCtx context.Context) {
//	    server.Shutdown(timeoutCtx)
//	    db.CloseConnection()
//	})
func WaitForShutdown(rootCtx context.Context, timeoutMilli int64, cleanupCallback func(timeoutCtx context.Context)) error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	return waitAndCleanUp(rootCtx, signals, time.Duration(timeoutMilli)*time.Millisecond, cleanupCallback)
}

func waitAndCleanUp(rootCtx context.Context, signals <-chan os.Signal, timeout time.Duration, cleanupCallback func(timeoutCtx context.Context)) error {
	select {
	case sig := <-signals:
		logx.GetLogger().LogDebug(rootCtx, fmt.Sprintf("Interrupt signal captured: %s", sig))
	case <-rootCtx.Done():
		logx.GetLogger().LogDebug(rootCtx, "Root context done, shutting down")
	}

	// the root context may already be cancelled, cleanup only honours the timeout
	timeoutCtx, cancel := context.WithTimeout(context.WithoutCancel(rootCtx), timeout)
	defer cancel()

	return cleanUp(timeoutCtx, cleanupCallback)
}

// cleanUp runs cleanupCallback and waits for it or for the context deadline, whichever comes first.
func cleanUp(timeoutCtx context.Context, cleanupCallback func(timeoutCtx context.Context)) error {
	logx.GetLogger().LogInfo(timeoutCtx, "Cleaning up all resources ....")

	done := make(chan struct{})

	go func() {
		defer close(done)
		if cleanupCallback != nil {
			cleanupCallback(timeoutCtx)
		}
	}()

	select {
	case <-timeoutCtx.Done():
		logx.GetLogger().LogError(timeoutCtx, "Deadline exceeded during context cancellation", timeoutCtx.Err())
		return ErrCleanupTimeout
	case <-done:
		logx.GetLogger().LogInfo(timeoutCtx, "All resources cleaned up")
		return nil
	}
}

// RunTaskWithContextCancellationCheck runs task and, on SIGINT or SIGTERM, closes terminateSignal so the task
// can stop gracefully before its context is cancelled. It returns the task's error.
//
// Usage:
//
//	err := shutdown.RunTaskWithContextCancellationCheck(ctx, func(cancelCtx context.Context, terminateSignal chan struct{}) error {
//	    select {
//	    case <-terminateSignal:
//	        return nil
//	    case res := <-work(cancelCtx):
//	        return res.Err
//	    }
//	})
func RunTaskWithContextCancellationCheck(rootCtx context.Context, task func(cancelCtx context.Context, terminateSignal chan struct{}) error) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigs)

	return runTask(rootCtx, sigs, task)
}

func runTask(rootCtx context.Context, sigs <-chan os.Signal, task func(cancelCtx context.Context, terminateSignal chan struct{}) error) error {
	cancelCtx, cancel := context.WithCancel(rootCtx)
	defer cancel()

	terminateSignal := make(chan struct{})
	taskCompleted := make(chan error, 1)

	go func() {
		taskCompleted <- task(cancelCtx, terminateSignal)
	}()

	var err error
	select {
	case sig := <-sigs:
		logx.GetLogger().LogInfo(cancelCtx, fmt.Sprintf("Received signal: %s", sig))
		close(terminateSignal)
		err = <-taskCompleted
	case err = <-taskCompleted:
	}

	if err != nil {
		logx.GetLogger().LogError(cancelCtx, "Task error", err)
	}

	return err
}
