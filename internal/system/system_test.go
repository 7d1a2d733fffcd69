package system

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"horizonx-machine/internal/domain"
	"horizonx-machine/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestBaseDevice(t *testing.T) {
	tests := map[string]string{
		"/dev/sda2":      "sda",
		"/dev/sdb":       "sdb",
		"/dev/nvme0n1p3": "nvme0n1",
		"/dev/nvme0n1":   "nvme0n1",
		"/dev/mmcblk0p1": "mmcblk0",
		"/dev/vda1":      "vda",
		"/dev/xvdb3":     "xvdb",
		"/dev/hdc":       "hdc",
		"/dev/dm-0":      "dm-0",
		"/dev/sr0":       "sr0",
		"/dev/loop7":     "loop7",
		"/dev/md127":     "md127",
	}

	for in, want := range tests {
		assert.Equal(t, want, baseDevice(in), in)
	}
}

func TestDiskKind(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "sys/block/sda/queue/rotational", "1\n")
	writeFile(t, root, "sys/block/nvme0n1/queue/rotational", "0\n")
	writeFile(t, root, "sys/block/weird/queue/rotational", "7\n")
	writeFile(t, root, "sys/block/dm-0/queue/rotational", "0\n")

	r := NewReaderWithRoot(root, logger.NewNop())

	assert.Equal(t, domain.DiskKindHDD, r.DiskKind("sda"))
	assert.Equal(t, domain.DiskKindSSD, r.DiskKind("nvme0n1"))
	assert.Equal(t, domain.DiskKindUnknown, r.DiskKind("weird"))
	assert.Equal(t, domain.DiskKindSSD, r.DiskKind(baseDevice("/dev/dm-0")))
	assert.Equal(t, domain.DiskKindUnknown, r.DiskKind("missing"))
}

func TestModel(t *testing.T) {
	root := t.TempDir()
	r := NewReaderWithRoot(root, logger.NewNop())
	assert.Nil(t, r.Model())

	writeFile(t, root, "sys/firmware/devicetree/base/model", "Raspberry Pi 4 Model B Rev 1.4\x00")
	model := r.Model()
	require.NotNil(t, model)
	assert.Equal(t, "Raspberry Pi 4 Model B Rev 1.4", *model)
}

func TestVAAPI(t *testing.T) {
	root := t.TempDir()
	r := NewReaderWithRoot(root, logger.NewNop())
	assert.False(t, r.VAAPI())

	writeFile(t, root, "dev/dri/renderD128", "")
	assert.True(t, r.VAAPI())
}

func TestCameras(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "sys/class/video4linux/video2/name", "USB Camera\n")
	writeFile(t, root, "sys/class/video4linux/video0/name", "Integrated Webcam\n")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sys/class/video4linux/video9"), 0o755))

	r := NewReaderWithRoot(root, logger.NewNop())

	assert.Equal(t, []domain.Camera{
		{Name: "Integrated Webcam", Path: "/dev/video0"},
		{Name: "USB Camera", Path: "/dev/video2"},
	}, r.Cameras())
}

func TestCameras_NoSubsystem(t *testing.T) {
	r := NewReaderWithRoot(t.TempDir(), logger.NewNop())
	assert.Empty(t, r.Cameras())
}

func TestHostAndProcessor(t *testing.T) {
	r := NewReader(logger.NewNop())
	ctx := context.Background()

	host := r.Host(ctx)
	assert.NotEmpty(t, host.KernelVersion)
	assert.NotEmpty(t, host.Hostname)

	assert.NotEmpty(t, r.Processor(ctx).Brand)
	assert.Positive(t, r.LogicalCPUs(ctx))
	assert.Positive(t, r.TotalMemory(ctx))
}
