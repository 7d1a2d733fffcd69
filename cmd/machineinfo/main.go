package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"horizonx-machine/internal/config"
	"horizonx-machine/internal/domain"
	"horizonx-machine/internal/gpu"
	"horizonx-machine/internal/logger"
	"horizonx-machine/internal/machine"
	"horizonx-machine/internal/monitor"
	"horizonx-machine/internal/snapshot"
	"horizonx-machine/internal/system"

	"github.com/dustin/go-humanize"
)

func main() {
	asJSON := flag.Bool("json", false, "print machine info as JSON")
	sample := flag.Duration("sample", time.Second, "interval for the system usage sample (0 to skip)")
	flag.Parse()

	cfg := config.Load()
	appLog := logger.New(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	nvidia, err := gpu.InitNvidia(ctx, cfg.NvidiaSMIPath, gpu.ExecRunner, appLog)
	if err != nil {
		appLog.Debug("nvidia: not available", "error", err)
	}

	mon := monitor.New(snapshot.NewProvider(appLog), appLog)
	mach := machine.New(mon, system.NewReader(appLog), nvidia, appLog)
	defer mach.Close()

	info := mach.SystemInfo(ctx)

	var status *domain.SystemStatus
	if *sample > 0 {
		if _, err := mach.SystemStatus(ctx); err != nil {
			log.Fatal(err)
		}
		time.Sleep(*sample)

		s, err := mach.SystemStatus(ctx)
		if err != nil {
			log.Fatal(err)
		}
		status = &s
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any{"info": info, "status": status}); err != nil {
			log.Fatal(err)
		}
		return
	}

	printInfo(os.Stdout, info, status)
}

func printInfo(w io.Writer, info domain.SystemInfo, status *domain.SystemStatus) {
	fmt.Fprintf(w, "Hostname:     %s\n", info.Hostname)
	fmt.Fprintf(w, "OS:           %s %s (%s)\n", info.OSName, info.OSVersion, info.Distribution)
	fmt.Fprintf(w, "Kernel:       %s\n", info.KernelVersion)
	if info.Model != nil {
		fmt.Fprintf(w, "Model:        %s\n", *info.Model)
	}
	fmt.Fprintf(w, "Processor:    %s (%s) @ %s MHz, %d logical\n",
		info.Processor.Brand, info.Processor.Vendor, humanize.Comma(int64(info.Processor.Frequency)), info.TotalProcessors)
	fmt.Fprintf(w, "Memory:       %s\n", humanize.IBytes(info.Memory))
	fmt.Fprintf(w, "VA-API:       %t\n", info.VAAPI)

	if status != nil {
		fmt.Fprintf(w, "CPU usage:    %.1f%%\n", status.CPU)
		fmt.Fprintf(w, "Memory used:  %s\n", humanize.IBytes(status.Memory))
	}

	if info.Nvidia != nil {
		fmt.Fprintf(w, "NVIDIA:       driver %s, NVML %s, CUDA %s\n",
			info.Nvidia.DriverVersion, info.Nvidia.NVMLVersion, info.Nvidia.CUDAVersion)
	}

	if len(info.Graphics) > 0 {
		fmt.Fprintln(w, "Graphics:")
		for _, g := range info.Graphics {
			fmt.Fprintf(w, "  %-40s %-12s %10s  %d°C\n", g.Name, g.Brand, humanize.IBytes(g.Memory), g.Temperature)
		}
	}

	if len(info.Disks) > 0 {
		fmt.Fprintln(w, "Disks:")
		for _, d := range info.Disks {
			fmt.Fprintf(w, "  %-16s %-6s %-4s %10s free of %-10s %s\n",
				d.Name, d.FS, d.StorageType, humanize.IBytes(d.Available), humanize.IBytes(d.Size), d.MountPoint)
		}
	}

	if len(info.Cameras) > 0 {
		names := make([]string, 0, len(info.Cameras))
		for _, c := range info.Cameras {
			names = append(names, fmt.Sprintf("%s (%s)", c.Name, c.Path))
		}
		fmt.Fprintf(w, "Cameras:      %s\n", strings.Join(names, ", "))
	}
}
