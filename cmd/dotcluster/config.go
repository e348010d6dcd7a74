package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/TrevorS/dotcluster"
)

const (
	envRadii        = "DOTCLUSTER_RADII"
	envFudge        = "DOTCLUSTER_FUDGE"
	envFudgeEnabled = "DOTCLUSTER_FUDGE_ENABLED"
)

// configFromEnv starts from the library defaults and applies any
// DOTCLUSTER_* overrides.
func configFromEnv(getenv func(string) string) (dotcluster.Config, error) {
	cfg := dotcluster.DefaultConfig()
	if v := getenv(envRadii); v != "" {
		if err := applyRadii(&cfg, v); err != nil {
			return cfg, fmt.Errorf("%s: %w", envRadii, err)
		}
	}

	fudge, enabled := cfg.Fudge, cfg.FudgeEnabled
	if v := getenv(envFudge); v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", envFudge, err)
		}
		fudge = f
	}
	if v := getenv(envFudgeEnabled); v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", envFudgeEnabled, err)
		}
		enabled = b
	}
	if err := cfg.SetFudge(fudge, enabled); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyRadii parses five comma-separated radii, dot first.
func applyRadii(cfg *dotcluster.Config, s string) error {
	parts := strings.Split(s, ",")
	if len(parts) != dotcluster.NumLevels {
		return fmt.Errorf("want %d comma-separated radii, got %d", dotcluster.NumLevels, len(parts))
	}
	var r [dotcluster.NumLevels]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return fmt.Errorf("radius %d: %w", i, err)
		}
		r[i] = f
	}
	return cfg.SetRadii(r[0], r[1], r[2], r[3], r[4])
}
