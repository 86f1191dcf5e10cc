//go:build linux || darwin

package goldstandard

import (
	"syscall"
	"time"
)

// cpuTime returns the calling process's total user+system CPU time so far.
// Gold-standard search is single-threaded, so process CPU time over the
// measured window attributes almost entirely to the sequential search.
func cpuTime() time.Duration {
	var ru syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	user := time.Duration(ru.Utime.Sec)*time.Second + time.Duration(ru.Utime.Usec)*time.Microsecond
	sys := time.Duration(ru.Stime.Sec)*time.Second + time.Duration(ru.Stime.Usec)*time.Microsecond
	return user + sys
}
