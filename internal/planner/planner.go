package planner

import (
	"strconv"

	"github.com/backmassage/audiobench/internal/config"
	"github.com/backmassage/audiobench/internal/naming"
)

// BuildPlan produces the FilePlan for inputPath. resolver may be nil, in
// which case the input's own stem is always used.
func BuildPlan(cfg *config.Config, inputPath string, resolver *naming.CollisionResolver) *FilePlan {
	stem := naming.Stem(inputPath)
	if resolver != nil {
		stem = resolver.Resolve(inputPath, stem)
	}

	plan := &FilePlan{
		InputPath: inputPath,
		Stem:      stem,
	}
	for _, p := range Policies {
		plan.Outputs = append(plan.Outputs, Output{
			Policy: p,
			Path:   naming.OutputPath(cfg.OutputDir, stem, p.Suffix(), cfg.OutputFormat),
			Args:   RateArgs(cfg, p),
		})
	}
	return plan
}

// RateArgs returns the rate-control arguments for policy p.
func RateArgs(cfg *config.Config, p Policy) []string {
	switch p {
	case PolicyCBR:
		return []string{"-b:a", cfg.CBRBitrate}
	case PolicyVBR:
		return []string{"-q:a", strconv.Itoa(cfg.VBRQuality)}
	}
	return nil
}
