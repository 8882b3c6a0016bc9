package console

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thejerf/suture/v4"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestForwarder(t *testing.T) {
	var out lockedBuffer
	f := NewForwarder(&out, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errC := make(chan error, 1)
	go func() { errC <- f.Serve(ctx) }()

	p := []byte("hello\n")
	n, err := f.Write(p)
	require.NoError(t, err)
	assert.Equal(t, len(p), n)
	p[0] = 'j'

	require.Eventually(t, func() bool { return out.String() == "hello\n" }, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-errC, context.Canceled)
}

func TestForwarderDropsWhenFull(t *testing.T) {
	var out lockedBuffer
	f := NewForwarder(&out, 2)

	for i := 0; i < 5; i++ {
		n, err := f.Write([]byte("x"))
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	}
	assert.Len(t, f.c, 2)
}

func TestPipe(t *testing.T) {
	var out bytes.Buffer
	err := Pipe(context.Background(), strings.NewReader("a\r\nb\nc"), &out)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n", out.String())
}

func TestReaderStopsAtEOF(t *testing.T) {
	var out bytes.Buffer
	r := Reader{Name: "test", R: strings.NewReader("line\n"), W: &out}

	err := r.Serve(context.Background())
	assert.ErrorIs(t, err, suture.ErrDoNotRestart)
	assert.Equal(t, "line\n", out.String())
}

func TestTeeHandler(t *testing.T) {
	var debug, info bytes.Buffer
	logger := slog.New(TeeHandler{
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
	}).With("svc", "test")

	logger.Debug("quiet")
	logger.Info("loud")

	assert.Contains(t, debug.String(), "msg=quiet")
	assert.Contains(t, debug.String(), "msg=loud")
	assert.NotContains(t, info.String(), "quiet")
	assert.Contains(t, info.String(), "svc=test")
}
