package system

import (
	"context"
	"strings"

	"horizonx-machine/internal/domain"

	"github.com/shirou/gopsutil/v4/disk"
)

func (r *SystemReader) Disks(ctx context.Context) []domain.Disk {
	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		r.log.Debug("failed to list partitions", "error", err.Error())
		return nil
	}

	disks := make([]domain.Disk, 0, len(partitions))
	for _, p := range partitions {
		if !strings.HasPrefix(p.Device, "/dev/") {
			continue
		}

		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil {
			r.log.Debug("failed to statfs", "path", p.Mountpoint, "error", err.Error())
			continue
		}
		if usage.Total == 0 {
			continue
		}

		disks = append(disks, domain.Disk{
			Name:        p.Device,
			FS:          p.Fstype,
			StorageType: r.DiskKind(baseDevice(p.Device)),
			MountPoint:  p.Mountpoint,
			Available:   usage.Free,
			Size:        usage.Total,
		})
	}

	return disks
}

// DiskKind reports SSD/HDD from the block queue's rotational flag.
func (r *SystemReader) DiskKind(device string) domain.DiskKind {
	value, err := r.readTrimmed("/sys/block/" + device + "/queue/rotational")
	if err != nil {
		r.log.Debug("failed to read rotational flag", "device", device, "error", err.Error())
		return domain.DiskKindUnknown
	}

	switch value {
	case "0":
		return domain.DiskKindSSD
	case "1":
		return domain.DiskKindHDD
	default:
		return domain.DiskKindUnknown
	}
}

var partitionedPrefixes = []string{"xvd", "sd", "hd", "vd"}

// baseDevice maps a partition device to its whole-disk name:
// /dev/sda2 -> sda, /dev/nvme0n1p3 -> nvme0n1, /dev/mmcblk0p1 -> mmcblk0.
// Anything else (dm-0, sr0, loop1, md127) is already a block device name.
func baseDevice(device string) string {
	dev := strings.TrimPrefix(device, "/dev/")

	if strings.HasPrefix(dev, "nvme") || strings.HasPrefix(dev, "mmcblk") {
		if i := strings.LastIndex(dev, "p"); i > 0 && isDigits(dev[i+1:]) {
			return dev[:i]
		}
		return dev
	}

	for _, prefix := range partitionedPrefixes {
		if !strings.HasPrefix(dev, prefix) {
			continue
		}
		name := strings.TrimRightFunc(dev, func(r rune) bool {
			return r >= '0' && r <= '9'
		})
		if len(name) > len(prefix) && isLetters(name[len(prefix):]) {
			return name
		}
	}

	return dev
}

func isLetters(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
