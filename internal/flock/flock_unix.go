//go:build unix

package flock

import "golang.org/x/sys/unix"

// Exclusive takes an exclusive lock on fd, failing if it is already held.
func Exclusive(fd uintptr) error {
	return unix.Flock(int(fd), unix.LOCK_EX|unix.LOCK_NB)
}

// Unlock releases the lock on fd.
func Unlock(fd uintptr) error {
	return unix.Flock(int(fd), unix.LOCK_UN)
}
