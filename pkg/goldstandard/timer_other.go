//go:build !linux && !darwin

package goldstandard

import "time"

// cpuTime has no portable process-rusage equivalent on this platform; wall
// time is still recorded accurately, only the CPU split degrades to zero.
func cpuTime() time.Duration {
	return 0
}
