package ipc_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matjam/camview/internal/ipc"
)

func TestClientRoundTrip(t *testing.T) {
	assert := assert.New(t)
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	_, err := ipc.SendStatus()
	require.Error(t, err, "no daemon should be listening yet")

	m := &fakeManager{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ipc.Start(ctx, m) }()

	require.Eventually(t, func() bool {
		_, err := ipc.SendStatus()
		return err == nil
	}, waitFor, 10*time.Millisecond)

	st, err := ipc.SendStatus()
	require.NoError(t, err)
	assert.Equal("pattern", st.Preview.Source)

	require.NoError(t, ipc.SendNext())
	require.NoError(t, ipc.SendRotate(270))
	require.NoError(t, ipc.SendSource("pattern"))
	require.NoError(t, ipc.SendStop())

	assert.Equal([]ipc.Command{
		{Type: ipc.CommandNext},
		{Type: ipc.CommandRotate, Args: []string{"270"}},
		{Type: ipc.CommandSource, Args: []string{"pattern"}},
		{Type: ipc.CommandStop},
	}, m.commands())

	cancel()
	select {
	case err := <-done:
		assert.NoError(err)
	case <-time.After(waitFor):
		t.Fatal("server did not shut down")
	}
	_, err = os.Stat(ipc.SocketPath())
	assert.True(os.IsNotExist(err))
}

func TestStart_ReturnsWhenContextDone(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ipc.Start(ctx, &fakeManager{}) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(ipc.SocketPath())
		return err == nil
	}, waitFor, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("socket server still serving after cancel")
	}
	_, err := os.Stat(ipc.SocketPath())
	assert.True(t, os.IsNotExist(err))
}
