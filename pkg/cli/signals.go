package cli

import (
	"os"
	"os/signal"
	"syscall"
)

// WaitForShutdown returns a channel that delivers the first SIGINT or
// SIGTERM. A second signal while shutdown is already in progress exits
// the process immediately, so an operator can abort a slow audit drain
// with another Ctrl+C.
func WaitForShutdown() <-chan os.Signal {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	out := make(chan os.Signal, 1)
	go func() {
		out <- <-sigChan
		<-sigChan
		os.Exit(130)
	}()
	return out
}
