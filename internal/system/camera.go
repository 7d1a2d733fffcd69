package system

import (
	"os"
	"path/filepath"
	"sort"

	"horizonx-machine/internal/domain"
)

func (r *SystemReader) Cameras() []domain.Camera {
	base := "/sys/class/video4linux"

	entries, err := os.ReadDir(r.path(base))
	if err != nil {
		r.log.Debug("failed to read video4linux", "error", err.Error())
		return []domain.Camera{}
	}

	cameras := make([]domain.Camera, 0, len(entries))
	for _, e := range entries {
		name, err := r.readTrimmed(filepath.Join(base, e.Name(), "name"))
		if err != nil {
			r.log.Debug("failed to read camera name", "device", e.Name(), "error", err.Error())
			continue
		}

		cameras = append(cameras, domain.Camera{
			Name: name,
			Path: "/dev/" + e.Name(),
		})
	}

	sort.Slice(cameras, func(i, j int) bool {
		return cameras[i].Path < cameras[j].Path
	})

	return cameras
}
