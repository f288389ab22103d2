package terrain

import (
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// cpuClock возвращает накопленное процессорное время процесса (user+system).
type cpuClock func() time.Duration

// processCPUClock измеряет CPU время текущего процесса через gopsutil.
// При ошибке возвращает часы, всегда отдающие 0.
func processCPUClock() cpuClock {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return func() time.Duration { return 0 }
	}
	return func() time.Duration {
		times, err := proc.Times()
		if err != nil {
			return 0
		}
		return time.Duration((times.User + times.System) * float64(time.Second))
	}
}
