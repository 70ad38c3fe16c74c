// Package netcheck provides a TCP connectivity probe for verifying that a
// broker or callback endpoint is reachable before wiring a bridge to it.
package netcheck

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"
)

// Result describes a completed probe.
type Result struct {
	Addr       string
	Elapsed    time.Duration
	RemoteAddr string
}

// Probe attempts a TCP connection to host:port within timeout. The elapsed
// time is reported for failures too, so timeouts are distinguishable from
// immediate refusals.
func Probe(ctx context.Context, host string, port int, timeout time.Duration) (Result, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	result := Result{Addr: addr}

	dialer := net.Dialer{Timeout: timeout}
	start := time.Now()
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	result.Elapsed = time.Since(start)
	if err != nil {
		return result, fmt.Errorf("connect to %s: %w", addr, err)
	}
	result.RemoteAddr = conn.RemoteAddr().String()
	_ = conn.Close()
	return result, nil
}
