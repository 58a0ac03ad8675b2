// Package config loads estimator settings from JSON files. Fields omitted
// from the file keep their compiled defaults, so partial configs are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/skywatch-data/significance.report/internal/tsmap"
)

// EstimatorConfig mirrors the estimator's option surface with pointer-typed
// fields so absent keys are distinguishable from zero values.
type EstimatorConfig struct {
	KernelWidthDeg     *float64 `json:"kernel_width_deg,omitempty"`
	DownsamplingFactor *int     `json:"downsampling_factor,omitempty"`
	NSigma             *float64 `json:"n_sigma,omitempty"`
	NSigmaUL           *float64 `json:"n_sigma_ul,omitempty"`
	Threshold          *float64 `json:"threshold,omitempty"`
	RTol               *float64 `json:"rtol,omitempty"`
	Selection          []string `json:"selection,omitempty"`
	FluxUnit           *string  `json:"flux_unit,omitempty"`
	NJobs              *int     `json:"n_jobs,omitempty"`
}

// maxFileSize guards against accidentally pointing the loader at a data file.
const maxFileSize = 1 * 1024 * 1024

// LoadEstimatorConfig loads an EstimatorConfig from a JSON file. The path
// must carry a .json extension and stay under the size cap.
func LoadEstimatorConfig(path string) (*EstimatorConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg EstimatorConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", cleanPath, err)
	}
	return &cfg, nil
}

// Apply overlays the config's set fields onto the given options and returns
// the result.
func (c *EstimatorConfig) Apply(opts tsmap.Options) tsmap.Options {
	if c == nil {
		return opts
	}
	if c.KernelWidthDeg != nil {
		opts.KernelWidthDeg = *c.KernelWidthDeg
	}
	if c.DownsamplingFactor != nil {
		opts.DownsamplingFactor = *c.DownsamplingFactor
	}
	if c.NSigma != nil {
		opts.NSigma = *c.NSigma
	}
	if c.NSigmaUL != nil {
		opts.NSigmaUL = *c.NSigmaUL
	}
	if c.Threshold != nil {
		opts.Threshold = c.Threshold
	}
	if c.RTol != nil {
		opts.RTol = *c.RTol
	}
	if c.Selection != nil {
		opts.Selection = c.Selection
	}
	if c.FluxUnit != nil {
		opts.FluxUnit = *c.FluxUnit
	}
	if c.NJobs != nil {
		opts.NJobs = *c.NJobs
	}
	return opts
}
