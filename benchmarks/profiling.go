package benchmarks

import (
	"os"
	"path"
	"runtime"
	"runtime/pprof"
)

// startProfiling starts the cpu profile if requested. The returned function
// stops it and writes the heap profile.
func startProfiling() func() {
	stopCPU := func() {}
	if cpuprofile != "" {
		cpuProfPath := path.Join(saveFile, cpuprofile)
		logger.Info("profiling cpu", "path", cpuProfPath)
		f, err := os.Create(cpuProfPath)
		if err != nil {
			logger.Error("could not create CPU profile", "err", err)
		} else if err := pprof.StartCPUProfile(f); err != nil {
			logger.Error("could not start CPU profile", "err", err)
			f.Close()
		} else {
			stopCPU = func() {
				pprof.StopCPUProfile()
				f.Close()
			}
		}
	}

	return func() {
		stopCPU()
		if memprofile == "" {
			return
		}
		memProfPath := path.Join(saveFile, memprofile)
		logger.Info("profiling memory", "path", memProfPath)
		f, err := os.Create(memProfPath)
		if err != nil {
			logger.Error("could not create memory profile", "err", err)
			return
		}
		defer f.Close()
		runtime.GC() // get up-to-date statistics
		if err := pprof.WriteHeapProfile(f); err != nil {
			logger.Error("could not write memory profile", "err", err)
		}
	}
}
