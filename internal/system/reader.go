// Package system
package system

import (
	"os"
	"path/filepath"
	"strings"

	"horizonx-machine/internal/logger"
)

type SystemReader struct {
	root string
	log  logger.Logger
}

func NewReader(log logger.Logger) *SystemReader {
	return NewReaderWithRoot("/", log)
}

// NewReaderWithRoot resolves /sys, /dev and /proc paths under root.
func NewReaderWithRoot(root string, log logger.Logger) *SystemReader {
	return &SystemReader{root: root, log: log}
}

func (r *SystemReader) path(p string) string {
	return filepath.Join(r.root, p)
}

func (r *SystemReader) readTrimmed(p string) (string, error) {
	data, err := os.ReadFile(r.path(p))
	if err != nil {
		return "", err
	}

	return strings.Trim(string(data), " \t\r\n\x00"), nil
}
