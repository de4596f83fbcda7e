//go:build unix

package main

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// reuseAddrAndPort is a net.ListenConfig.Control callback that enables
// SO_REUSEADDR (always) and SO_REUSEPORT (best effort) on the listen
// socket before it binds, per spec.md §6.
func reuseAddrAndPort(_ string, _ string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		if sockErr != nil {
			return
		}
		// SO_REUSEPORT is not available on every platform; ignore the
		// error rather than fail the listen.
		_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
