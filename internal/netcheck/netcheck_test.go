package netcheck

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe(t *testing.T) {
	t.Run("reaches a listening port", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer ln.Close()

		port := ln.Addr().(*net.TCPAddr).Port
		result, err := Probe(context.Background(), "127.0.0.1", port, time.Second)

		require.NoError(t, err)
		assert.NotEmpty(t, result.RemoteAddr)
		assert.GreaterOrEqual(t, result.Elapsed, time.Duration(0))
	})

	t.Run("reports a closed port", func(t *testing.T) {
		// Grab a free port and close it again so nothing is listening.
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		port := ln.Addr().(*net.TCPAddr).Port
		require.NoError(t, ln.Close())

		_, err = Probe(context.Background(), "127.0.0.1", port, time.Second)
		assert.Error(t, err)
	})
}
