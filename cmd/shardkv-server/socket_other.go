//go:build !unix

package main

import "syscall"

// reuseAddrAndPort is a no-op on platforms without SO_REUSEPORT support;
// the listener still binds normally.
func reuseAddrAndPort(_ string, _ string, _ syscall.RawConn) error {
	return nil
}
