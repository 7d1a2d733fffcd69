package gpu

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"horizonx-machine/internal/domain"
	"horizonx-machine/internal/logger"
)

var ErrClosed = errors.New("nvidia handle closed")

// Nvidia is created once at startup. A nil *Nvidia means no driver.
type Nvidia struct {
	bin string
	run Runner
	log logger.Logger

	mu     sync.Mutex
	closed bool
}

func InitNvidia(ctx context.Context, bin string, run Runner, log logger.Logger) (*Nvidia, error) {
	if run == nil {
		run = ExecRunner
	}

	out, err := run(ctx, bin, "-L")
	if err != nil {
		return nil, fmt.Errorf("nvidia-smi unavailable: %w", err)
	}
	if len(bytes.TrimSpace(out)) == 0 {
		return nil, errors.New("nvidia-smi reported no devices")
	}

	return &Nvidia{bin: bin, run: run, log: log}, nil
}

func (n *Nvidia) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.closed = true
	return nil
}

func (n *Nvidia) query(ctx context.Context, args ...string) ([]byte, error) {
	n.mu.Lock()
	closed := n.closed
	n.mu.Unlock()

	if closed {
		return nil, ErrClosed
	}

	return n.run(ctx, n.bin, args...)
}

// Info returns nil unless driver, NVML and CUDA versions are all known.
func (n *Nvidia) Info(ctx context.Context) *domain.NvidiaInfo {
	out, err := n.query(ctx, "--version")
	if err != nil {
		n.log.Debug("nvidia: failed to read versions", "error", err.Error())
		return nil
	}

	fields := parseColonFields(out)
	info := &domain.NvidiaInfo{
		DriverVersion: fields["driver version"],
		NVMLVersion:   fields["nvml version"],
		CUDAVersion:   fields["cuda version"],
	}

	if info.DriverVersion == "" || info.NVMLVersion == "" || info.CUDAVersion == "" {
		n.log.Debug("nvidia: incomplete version information")
		return nil
	}

	return info
}

func (n *Nvidia) Cards(ctx context.Context) []domain.GraphicCard {
	out, err := n.query(ctx,
		"--query-gpu=index,uuid,name,memory.total,temperature.gpu",
		"--format=csv,noheader,nounits",
	)
	if err != nil {
		n.log.Debug("nvidia: failed to query cards", "error", err.Error())
		return nil
	}

	brands := n.brands(ctx)

	var cards []domain.GraphicCard
	for _, row := range parseCSV(out) {
		if len(row) < 5 {
			n.log.Debug("nvidia: short card row", "fields", len(row))
			continue
		}

		index, err := strconv.Atoi(row[0])
		if err != nil {
			n.log.Debug("nvidia: invalid card index", "value", row[0])
			continue
		}

		memMiB, err := strconv.ParseUint(row[3], 10, 64)
		if err != nil {
			n.log.Debug("nvidia: failed to get card memory", "index", index, "error", err.Error())
			continue
		}

		temp, err := strconv.ParseUint(row[4], 10, 32)
		if err != nil {
			n.log.Debug("nvidia: failed to get card temperature", "index", index, "error", err.Error())
			continue
		}

		brand := domain.ParseGPUBrand("Unknown")
		if index < len(brands) {
			brand = brands[index]
		}

		cards = append(cards, domain.GraphicCard{
			ID:          row[1],
			Name:        row[2],
			Brand:       brand,
			Memory:      memMiB * 1024 * 1024,
			Temperature: uint32(temp),
		})
	}

	return cards
}

func (n *Nvidia) Usage(ctx context.Context) []domain.GraphicsUsage {
	out, err := n.query(ctx,
		"--query-gpu=index,uuid,memory.used,utilization.encoder,utilization.decoder,utilization.gpu,utilization.memory,temperature.gpu",
		"--format=csv,noheader,nounits",
	)
	if err != nil {
		n.log.Debug("nvidia: failed to query usage", "error", err.Error())
		return nil
	}

	processes := n.processes(ctx)

	var usages []domain.GraphicsUsage
	for _, row := range parseCSV(out) {
		if len(row) < 8 {
			n.log.Debug("nvidia: short usage row", "fields", len(row))
			continue
		}

		values := make([]uint64, 0, 6)
		valid := true
		for _, raw := range row[2:8] {
			v, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				n.log.Debug("nvidia: invalid usage value", "uuid", row[1], "value", raw)
				valid = false
				break
			}
			values = append(values, v)
		}
		if !valid {
			continue
		}

		usages = append(usages, domain.GraphicsUsage{
			ID:          row[1],
			MemoryUsed:  values[0] * 1024 * 1024,
			Encoder:     uint32(values[1]),
			Decoder:     uint32(values[2]),
			GPU:         uint32(values[3]),
			MemoryUsage: uint32(values[4]),
			Temperature: uint32(values[5]),
			Processes:   processes[row[0]],
		})
	}

	return usages
}

func (n *Nvidia) brands(ctx context.Context) []domain.GPUBrand {
	out, err := n.query(ctx, "-q")
	if err != nil {
		n.log.Debug("nvidia: failed to read product brands", "error", err.Error())
		return nil
	}

	var brands []domain.GPUBrand
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "product brand") {
			continue
		}
		brands = append(brands, domain.ParseGPUBrand(value))
	}

	return brands
}

// processes maps a gpu index to per-process utilization from `pmon`.
func (n *Nvidia) processes(ctx context.Context) map[string][]domain.GraphicsProcessUtilization {
	result := make(map[string][]domain.GraphicsProcessUtilization)

	out, err := n.query(ctx, "pmon", "-c", "1", "-s", "u")
	if err != nil {
		n.log.Debug("nvidia: failed to read process utilization", "error", err.Error())
		return result
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 7 {
			continue
		}

		pid, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			// idle gpus report "-" as pid
			continue
		}

		result[fields[0]] = append(result[fields[0]], domain.GraphicsProcessUtilization{
			PID:     uint32(pid),
			GPU:     percentField(fields[3]),
			Memory:  percentField(fields[4]),
			Encoder: percentField(fields[5]),
			Decoder: percentField(fields[6]),
		})
	}

	return result
}

func percentField(raw string) uint32 {
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(v)
}

func parseCSV(out []byte) [][]string {
	var rows [][]string

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		rows = append(rows, parts)
	}

	return rows
}

func parseColonFields(out []byte) map[string]string {
	fields := make(map[string]string)

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		fields[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}

	return fields
}
