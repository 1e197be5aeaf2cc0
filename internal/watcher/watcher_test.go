package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectOne(t *testing.T, ch <-chan string, timeout time.Duration) string {
	t.Helper()
	select {
	case path := <-ch:
		return path
	case <-time.After(timeout):
		t.Fatal("timed out waiting for watcher event")
		return ""
	}
}

func TestWatch_ReportsNewDocument(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := New(dir, WithDebounce(50*time.Millisecond)).Watch(ctx)
	require.NoError(t, err)

	path := filepath.Join(dir, "policy.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0600))

	assert.Equal(t, path, collectOne(t, events, 5*time.Second))
}

func TestWatch_IgnoresUnsupportedExtensions(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := New(dir, WithDebounce(50*time.Millisecond)).Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), []byte{0x89}, 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("text"), 0600))

	// Only the .txt file is reported.
	path := collectOne(t, events, 5*time.Second)
	assert.Equal(t, filepath.Join(dir, "notes.txt"), path)

	select {
	case extra := <-events:
		t.Fatalf("unexpected extra event: %s", extra)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatch_DebouncesWriteBursts(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := New(dir, WithDebounce(150*time.Millisecond)).Watch(ctx)
	require.NoError(t, err)

	path := filepath.Join(dir, "draft.md")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("revision"), 0600))
		time.Sleep(20 * time.Millisecond)
	}

	assert.Equal(t, path, collectOne(t, events, 5*time.Second))

	// The burst collapses into a single report.
	select {
	case extra := <-events:
		t.Fatalf("burst produced extra event: %s", extra)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatch_ClosesOnCancel(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())

	events, err := New(dir).Watch(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case _, open := <-events:
		assert.False(t, open, "channel should be closed after cancel")
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestWatch_CancelDuringDebounce(t *testing.T) {
	// Cancelling while a debounce timer is armed must not race the
	// channel close: the timer callback may fire during shutdown.
	dir := t.TempDir()
	for i := 0; i < 200; i++ {
		ctx, cancel := context.WithCancel(context.Background())

		events, err := New(dir, WithDebounce(3*time.Millisecond)).Watch(ctx)
		require.NoError(t, err)

		path := filepath.Join(dir, fmt.Sprintf("doc%d.txt", i))
		require.NoError(t, os.WriteFile(path, []byte("text"), 0600))

		time.Sleep(2 * time.Millisecond)
		cancel()

		// Drain until the watcher closes the channel; a send after
		// close panics and fails the whole run.
		deadline := time.After(5 * time.Second)
		for open := true; open; {
			select {
			case _, open = <-events:
			case <-deadline:
				t.Fatal("channel not closed after cancel")
			}
		}
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "ghost")).Watch(context.Background())
	assert.Error(t, err)
}
