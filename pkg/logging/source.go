package logging

import (
	"path/filepath"
	"runtime"
	"strconv"
)

// sourceLabel returns "file.go:line" for the caller recorded at pc, or ""
// when pc is unknown.
func sourceLabel(pc uintptr) string {
	if pc == 0 {
		return ""
	}
	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	if frame.File == "" {
		return ""
	}
	return formatSource(frame.File, frame.Line)
}

func formatSource(file string, line int) string {
	return filepath.Base(file) + ":" + strconv.Itoa(line)
}
