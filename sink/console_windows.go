//go:build windows
// +build windows

package sink

import (
	"os"
	"sync"
	"syscall"
	"unsafe"
)

const enableVirtualTerminalProcessing = 0x0004

var (
	kernel32            = syscall.NewLazyDLL("kernel32.dll")
	procGetConsoleMode  = kernel32.NewProc("GetConsoleMode")
	procSetConsoleMode  = kernel32.NewProc("SetConsoleMode")
	vtProcessingEnabled sync.Once
)

// enableWindowsVTProcessing enables VT100 processing on Windows 10+ so
// ANSI color codes render instead of printing literally.
func enableWindowsVTProcessing() {
	vtProcessingEnabled.Do(func() {
		enableForHandle(os.Stdout.Fd())
		enableForHandle(os.Stderr.Fd())
	})
}

func enableForHandle(handle uintptr) {
	var mode uint32
	ret, _, _ := procGetConsoleMode.Call(handle, uintptr(unsafe.Pointer(&mode)))
	if ret == 0 {
		return
	}
	if mode&enableVirtualTerminalProcessing != 0 {
		return
	}
	mode |= enableVirtualTerminalProcessing
	procSetConsoleMode.Call(handle, uintptr(mode))
}
