// Package console streams text into the writable overlays.
package console

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/thejerf/suture/v4"
)

// DefaultQueueSize is the number of pending chunks a Forwarder keeps.
const DefaultQueueSize = 256

// Forwarder is an io.Writer that hands chunks to a background writer. Writes
// never block and chunks are dropped while the queue is full.
type Forwarder struct {
	w io.Writer
	c chan []byte
}

func NewForwarder(w io.Writer, size int) *Forwarder {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Forwarder{
		w: w,
		c: make(chan []byte, size),
	}
}

func (f *Forwarder) String() string {
	return "console.Forwarder"
}

func (f *Forwarder) Write(p []byte) (int, error) {
	select {
	case f.c <- bytes.Clone(p):
	default:
	}
	return len(p), nil
}

func (f *Forwarder) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case p := <-f.c:
			// Errors are not logged since log output may be forwarded here.
			f.w.Write(p)
		}
	}
}

// Pipe writes each line of r to w.
func Pipe(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := append(bytes.Clone(scanner.Bytes()), '\n')
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// Reader pipes a stream such as stdin into W until it ends.
type Reader struct {
	Name string
	R    io.Reader
	W    io.Writer
}

func (r Reader) String() string {
	return fmt.Sprintf("console.Reader(%s)", r.Name)
}

func (r Reader) Serve(ctx context.Context) error {
	errC := make(chan error, 1)
	go func() { errC <- Pipe(ctx, r.R, r.W) }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errC:
		if err != nil {
			return err
		}
		slog.Debug("console reader closed", "name", r.Name)
		return suture.ErrDoNotRestart
	}
}
