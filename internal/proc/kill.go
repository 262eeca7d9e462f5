//go:build linux || darwin

package proc

import "syscall"

// Terminate force-kills a process. There is no check that the pid still
// names the process that was enumerated earlier; that race is inherent to
// a polling dashboard and accepted. Never panics; failure comes back as a
// message for the API response.
func Terminate(pid int) (bool, string) {
	if pid <= 0 {
		return false, "invalid pid"
	}
	if err := syscall.Kill(pid, syscall.SIGKILL); err != nil {
		return false, err.Error()
	}
	return true, ""
}
