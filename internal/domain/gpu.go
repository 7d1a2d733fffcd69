package domain

import "strings"

type GPUBrandKind int

const (
	BrandUnrecognized GPUBrandKind = iota
	BrandGeForce
	BrandQuadro
	BrandTesla
	BrandTitan
	BrandNVS
	BrandGRID
	BrandVApps
	BrandVPC
	BrandVCS
	BrandVWS
	BrandCloudGaming
	BrandUnknown
)

var brandNames = map[GPUBrandKind]string{
	BrandGeForce:     "GeForce",
	BrandQuadro:      "Quadro",
	BrandTesla:       "Tesla",
	BrandTitan:       "Titan",
	BrandNVS:         "NVS",
	BrandGRID:        "GRID",
	BrandVApps:       "VApps",
	BrandVPC:         "VPC",
	BrandVCS:         "VCS",
	BrandVWS:         "VWS",
	BrandCloudGaming: "CloudGaming",
	BrandUnknown:     "Unknown",
}

// GPUBrand keeps the raw vendor string so values newer than this table
// still round-trip as BrandUnrecognized.
type GPUBrand struct {
	Kind GPUBrandKind
	Raw  string
}

func ParseGPUBrand(raw string) GPUBrand {
	trimmed := strings.TrimSpace(raw)
	normalized := strings.ToLower(strings.ReplaceAll(trimmed, " ", ""))

	for kind, name := range brandNames {
		if strings.ToLower(name) == normalized {
			return GPUBrand{Kind: kind, Raw: trimmed}
		}
	}

	// nvidia-smi prefixes some brands, e.g. "NVIDIA RTX" or "GeForce RTX"
	switch {
	case strings.HasPrefix(normalized, "geforce"):
		return GPUBrand{Kind: BrandGeForce, Raw: trimmed}
	case strings.HasPrefix(normalized, "quadro"):
		return GPUBrand{Kind: BrandQuadro, Raw: trimmed}
	}

	return GPUBrand{Kind: BrandUnrecognized, Raw: trimmed}
}

func (b GPUBrand) String() string {
	if name, ok := brandNames[b.Kind]; ok {
		return name
	}
	return "Unrecognized(" + b.Raw + ")"
}

func (b GPUBrand) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

type GraphicCard struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Brand       GPUBrand `json:"brand"`
	Memory      uint64   `json:"memory"`
	Temperature uint32   `json:"temperature"`
}

type GraphicsProcessUtilization struct {
	PID     uint32 `json:"pid"`
	GPU     uint32 `json:"gpu"`
	Memory  uint32 `json:"memory"`
	Encoder uint32 `json:"encoder"`
	Decoder uint32 `json:"decoder"`
}

type GraphicsUsage struct {
	ID          string                       `json:"id"`
	MemoryUsed  uint64                       `json:"memory_used"`
	Encoder     uint32                       `json:"encoder"`
	Decoder     uint32                       `json:"decoder"`
	GPU         uint32                       `json:"gpu"`
	MemoryUsage uint32                       `json:"memory_usage"`
	Temperature uint32                       `json:"temperature"`
	Processes   []GraphicsProcessUtilization `json:"processes"`
}
