package telemetry

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// ResourceStats is a point-in-time snapshot of process and host load,
// reported on the health endpoint.
type ResourceStats struct {
	Goroutines     int     `json:"goroutines"`
	MemoryUsedPct  float64 `json:"memory_used_pct"`
	MemoryUsedMB   uint64  `json:"memory_used_mb"`
	CPUPercent     float64 `json:"cpu_percent"`
	HeapAllocBytes uint64  `json:"heap_alloc_bytes"`
}

// CollectResourceStats gathers the snapshot. Probe failures leave the
// affected fields at zero rather than failing the health check.
func CollectResourceStats() ResourceStats {
	stats := ResourceStats{Goroutines: runtime.NumGoroutine()}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	stats.HeapAllocBytes = ms.HeapAlloc

	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemoryUsedPct = vm.UsedPercent
		stats.MemoryUsedMB = vm.Used / 1024 / 1024
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}

	return stats
}
