// Package prof wraps runtime/pprof for the CLI profiling flags.
package prof

import (
	"os"
	"runtime"
	"runtime/pprof"
)

// Session holds the profiles captured around one run. A zero CPU or heap
// path disables that profile.
type Session struct {
	cpuFile *os.File
	memPath string
}

// Start begins CPU profiling if cpuPath is set and remembers memPath for
// Stop. The caller must call Stop exactly once.
func Start(cpuPath, memPath string) (*Session, error) {
	s := &Session{memPath: memPath}
	if cpuPath != "" {
		f, err := os.Create(cpuPath)
		if err != nil {
			return nil, err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, err
		}
		s.cpuFile = f
	}
	return s, nil
}

// Stop ends the CPU profile and writes the heap profile, if requested.
func (s *Session) Stop() error {
	if s.cpuFile != nil {
		pprof.StopCPUProfile()
		_ = s.cpuFile.Close()
		s.cpuFile = nil
	}
	if s.memPath == "" {
		return nil
	}
	f, err := os.Create(s.memPath)
	if err != nil {
		return err
	}
	defer f.Close()
	runtime.GC()
	return pprof.WriteHeapProfile(f)
}
