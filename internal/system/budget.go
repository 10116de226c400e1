package system

import (
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// Budget is the frame rate and worker count the host can afford.
type Budget struct {
	FPS      int
	Workers  int
	Cores    int
	Load1    float64
	MemUsed  float64 // percent
	Degraded bool
}

// FrameInterval is the time between frames at the budgeted rate.
func (b Budget) FrameInterval() time.Duration {
	if b.FPS <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(b.FPS)
}

// FrameBudget sizes the render loop to the machine. With more runnable work
// than cores, or nearly full memory, the frame rate is halved (never below 10)
// and media decoding uses a single worker.
func FrameBudget(wantFPS, wantWorkers int) Budget {
	if wantFPS <= 0 {
		wantFPS = 30
	}
	if wantWorkers <= 0 {
		wantWorkers = runtime.NumCPU()
	}

	b := Budget{FPS: wantFPS, Workers: wantWorkers, Cores: runtime.NumCPU()}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		b.Cores = n
	}
	if avg, err := load.Avg(); err == nil {
		b.Load1 = avg.Load1
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		b.MemUsed = vm.UsedPercent
	}
	return b.adjust()
}

func (b Budget) adjust() Budget {
	if b.Workers > b.Cores {
		b.Workers = b.Cores
	}
	if b.Load1 > float64(b.Cores) || b.MemUsed > 95 {
		b.Degraded = true
		b.FPS /= 2
		if b.FPS < 10 {
			b.FPS = 10
		}
		b.Workers = 1
	}
	if b.Workers < 1 {
		b.Workers = 1
	}
	return b
}
