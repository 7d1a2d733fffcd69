// Package gpu exposes NVIDIA cards through nvidia-smi as an optional capability.
package gpu

import (
	"context"
	"os/exec"
)

type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}
