package util

import (
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSdNotifyWithoutSystemd(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")
	sent, err := SdNotify(false, SdNotifyReady)
	assert.NoError(t, err)
	assert.False(t, sent)
}

func TestSdNotify(t *testing.T) {
	addr := &net.UnixAddr{Name: filepath.Join(t.TempDir(), "notify.sock"), Net: "unixgram"}
	conn, err := net.ListenUnixgram("unixgram", addr)
	require.NoError(t, err)
	defer conn.Close()

	t.Setenv("NOTIFY_SOCKET", addr.Name)
	sent, err := SdNotify(false, SdNotifyReady)
	require.NoError(t, err)
	assert.True(t, sent)

	buf := make([]byte, 64)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, SdNotifyReady, string(buf[:n]))
}
