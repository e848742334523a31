package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler cancels a long-running import on SIGINT/SIGTERM and tells the
// user what has already been saved.
type InterruptHandler struct {
	writer      io.Writer
	cancelFunc  context.CancelFunc
	saved       func() int
	interrupted bool
	mu          sync.Mutex
}

// NewInterruptHandler creates a new interrupt handler.
func NewInterruptHandler(writer io.Writer) *InterruptHandler {
	if writer == nil {
		writer = os.Stdout
	}
	return &InterruptHandler{
		writer: writer,
	}
}

// HandleInterrupts returns a context that is canceled on the first interrupt. saved
// reports how many datasets were stored before the interrupt; it may be nil.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context, saved func() int) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	h.mu.Lock()
	h.cancelFunc = cancel
	h.saved = saved
	h.mu.Unlock()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			h.interrupt()
		case <-ctx.Done():
		}
	}()

	return ctx
}

// interrupt records the interrupt, prints the message once and cancels.
func (h *InterruptHandler) interrupt() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.interrupted {
		return
	}
	h.interrupted = true
	h.showInterruptMessage()
	if h.cancelFunc != nil {
		h.cancelFunc()
	}
}

// showInterruptMessage must be called with h.mu held.
func (h *InterruptHandler) showInterruptMessage() {
	msg := "\n\n" + FormatWarning("Import interrupted!")

	if h.saved != nil {
		if n := h.saved(); n > 0 {
			msg += "\n" + FormatInfo(fmt.Sprintf("%d dataset(s) were saved before the interrupt. List them with: gtn datasets list", n))
		}
	}

	msg += "\n"

	if _, err := fmt.Fprint(h.writer, msg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", err)
	}
}

// WasInterrupted returns true if the process was interrupted.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}
