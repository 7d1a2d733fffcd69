package domain

import "context"

type Processor struct {
	Frequency uint64 `json:"frequency"`
	Vendor    string `json:"vendor"`
	Brand     string `json:"brand"`
}

type DiskKind string

const (
	DiskKindHDD     DiskKind = "HDD"
	DiskKindSSD     DiskKind = "SSD"
	DiskKindUnknown DiskKind = "Unknown"
)

type Disk struct {
	Name        string   `json:"name"`
	FS          string   `json:"fs"`
	StorageType DiskKind `json:"storage_type"`
	MountPoint  string   `json:"mount_point"`
	Available   uint64   `json:"available"`
	Size        uint64   `json:"size"`
}

type Camera struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type NvidiaInfo struct {
	DriverVersion string `json:"driver_version"`
	NVMLVersion   string `json:"nvml_version"`
	CUDAVersion   string `json:"cuda_version"`
}

type SystemInfo struct {
	OSName          string        `json:"os_name"`
	KernelVersion   string        `json:"kernel_version"`
	OSVersion       string        `json:"os_version"`
	Distribution    string        `json:"distribution"`
	Hostname        string        `json:"hostname"`
	Memory          uint64        `json:"memory"`
	Nvidia          *NvidiaInfo   `json:"nvidia,omitempty"`
	VAAPI           bool          `json:"vaapi"`
	Processor       Processor     `json:"processor"`
	TotalProcessors int           `json:"total_processors"`
	Graphics        []GraphicCard `json:"graphics"`
	Disks           []Disk        `json:"disks"`
	Cameras         []Camera      `json:"cameras"`
	Model           *string       `json:"model,omitempty"`
}

// SystemStatus is the whole-machine usage since the previous poll.
type SystemStatus struct {
	CPU    float64 `json:"cpu"`
	Memory uint64  `json:"memory"`
}

// ProcessUsage is the CPU usage of one tracked process since the previous poll.
type ProcessUsage struct {
	PID    int32   `json:"pid"`
	CPU    float64 `json:"cpu"`
	Memory uint64  `json:"memory"` // resident set size in bytes
}

type TrackProcessRequest struct {
	PID int32 `json:"pid" validate:"required,gt=0"`
}

type MachineService interface {
	SystemInfo(ctx context.Context) SystemInfo
	GraphicsStatus(ctx context.Context) []GraphicsUsage
	TrackProcess(ctx context.Context, pid int32) error
	UntrackProcess(pid int32)
	TrackedProcesses() []int32
	ProcessesStatus(ctx context.Context) []ProcessUsage
	SystemStatus(ctx context.Context) (SystemStatus, error)
}
