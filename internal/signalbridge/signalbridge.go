// Package signalbridge translates OS signals into the run's cooperative
// shutdown flag (C12). SIGTERM and SIGINT clear the flag the same way an
// overload does; SIGUSR1 dumps every goroutine's stack without affecting
// the run at all.
//
// A SIGSEGV handler is deliberately not implemented: the reference tool
// installs one to print a stack trace before _exit(-1), but the Go
// runtime treats SIGSEGV as a fatal, unrecoverable signal for its own
// memory-safety checks and does not support intercepting it for anything
// but a runtime-fault dump (see runtime/panic.go's own SIGSEGV handling).
// A Go build already gets an equivalent goroutine dump on a real fault
// for free, so a manual handler would either fight the runtime's or add
// nothing.
package signalbridge

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sync/atomic"
	"syscall"
	"time"
)

// Watch installs handlers for SIGTERM, SIGINT, and SIGUSR1 and returns a
// stop function that removes them. On each SIGTERM/SIGINT, running is
// cleared (set to false) and onShutdown is invoked with the terminating
// signal's name. On SIGUSR1, every goroutine's stack is
// dumped to stderr and to a timestamped file; the run is otherwise
// unaffected.
func Watch(running *atomic.Bool, onShutdown func(signalName string)) (stop func()) {
	termCh := make(chan os.Signal, 1)
	signal.Notify(termCh, syscall.SIGTERM, syscall.SIGINT)

	usr1Ch := make(chan os.Signal, 1)
	signal.Notify(usr1Ch, syscall.SIGUSR1)

	done := make(chan struct{})

	go func() {
		for {
			select {
			case sig := <-termCh:
				running.Store(false)
				if onShutdown != nil {
					onShutdown(sig.String())
				}
			case <-usr1Ch:
				dumpStacks()
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(termCh)
		signal.Stop(usr1Ch)
		close(done)
	}
}

func dumpStacks() {
	buf := make([]byte, 1<<20)
	n := runtime.Stack(buf, true)

	fmt.Fprintf(os.Stderr, "\n=== goroutine stack dump ===\n%s\n=== end dump ===\n\n", buf[:n])

	filename := fmt.Sprintf("act-storage-stacks-%d.txt", time.Now().Unix())
	f, err := os.Create(filename)
	if err != nil {
		return
	}
	defer f.Close()
	f.Write(buf[:n])
}
