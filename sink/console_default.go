//go:build !windows
// +build !windows

package sink

// enableWindowsVTProcessing is a no-op on non-Windows platforms.
func enableWindowsVTProcessing() {}
