package system

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

type HostInfo struct {
	OSName        string
	OSVersion     string
	Distribution  string
	KernelVersion string
	Hostname      string
}

func (r *SystemReader) Host(ctx context.Context) HostInfo {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		r.log.Debug("failed to read host info", "error", err.Error())
		return HostInfo{
			OSName:        "Unknown",
			OSVersion:     "Unknown",
			KernelVersion: "Unknown",
			Hostname:      r.hostname(),
		}
	}

	return HostInfo{
		OSName:        orUnknown(info.OS),
		OSVersion:     orUnknown(info.PlatformVersion),
		Distribution:  info.Platform,
		KernelVersion: orUnknown(info.KernelVersion),
		Hostname:      orUnknown(info.Hostname),
	}
}

func (r *SystemReader) hostname() string {
	value, err := os.Hostname()
	if err != nil {
		r.log.Debug("failed to read hostname", "error", err.Error())
		return "Unknown"
	}

	return value
}

func (r *SystemReader) TotalMemory(ctx context.Context) uint64 {
	vmem, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		r.log.Debug("failed to read memory", "error", err.Error())
		return 0
	}

	return vmem.Total
}

// Model is the board model exposed by the devicetree, e.g. on a Raspberry Pi.
func (r *SystemReader) Model() *string {
	value, err := r.readTrimmed("/sys/firmware/devicetree/base/model")
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.log.Debug("failed to read devicetree model", "error", err.Error())
		}
		return nil
	}

	return &value
}

func (r *SystemReader) VAAPI() bool {
	_, err := os.Stat(r.path("/dev/dri/renderD128"))
	return err == nil
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
