package worker

import (
	"github.com/ohsu-comp-bio/sweep/logger"
	pscpu "github.com/shirou/gopsutil/cpu"
)

// checkCPUs warns when a job asks for more workers than the host has
// logical CPUs. The scheduler usually pins jobs to fewer cores than that.
func checkCPUs(n int, log *logger.Logger) {
	count, err := pscpu.Counts(true)
	if err != nil {
		log.Debug("error detecting cpu cores", "error", err)
		return
	}
	if n > count {
		log.Warn("Job requests more workers than logical CPUs", "n_cpu", n, "cpus", count)
	}
}
