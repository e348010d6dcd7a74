package dotcluster

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers match them with errors.Is; the returned errors
// carry the offending values.
var (
	ErrInvalidLevel    = errors.New("dotcluster: invalid level")
	ErrRadiiOrder      = errors.New("dotcluster: radii must be strictly increasing from a positive dot radius")
	ErrInvalidFudge    = errors.New("dotcluster: fudge must be >= 0 and below the dot radius")
	ErrNotFound        = errors.New("dotcluster: no element at coordinate")
	ErrUnknownInstance = errors.New("dotcluster: unknown clusterizator")
)

// Config holds the geometry settings of one Clusterizator.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Radii is the absorption radius of each level, indexed by Level.
	// Values must satisfy 0 < dot < L1 < L2 < L3 < L4.
	// Default: 10, 50, 300, 1500, 10000.
	Radii [NumLevels]float64

	// Fudge is added to every containment radius while FudgeEnabled is set,
	// so that a centre lying exactly on another element's edge does not look
	// detached when drawn. Must be >= 0 and below the dot radius. Default: 3.
	Fudge float64

	// FudgeEnabled switches the Fudge tolerance on. Default: true.
	FudgeEnabled bool
}

// DefaultConfig returns a Config with the stock radii and fudge settings.
func DefaultConfig() Config {
	return Config{
		Radii:        [NumLevels]float64{10, 50, 300, 1500, 10000},
		Fudge:        3,
		FudgeEnabled: true,
	}
}

// Radius returns the configured radius for l, or 0 for an invalid level.
func (c Config) Radius(l Level) float64 {
	if !l.Valid() {
		return 0
	}
	return c.Radii[l]
}

// Validate reports whether c is usable by a Clusterizator.
func (c Config) Validate() error {
	if err := validateRadii(c.Radii); err != nil {
		return err
	}
	return validateFudge(c.Fudge, c.Radii[LevelDot])
}

// SetRadii replaces all five radii at once. A non-ascending set is rejected
// and c is left untouched.
func (c *Config) SetRadii(dot, l1, l2, l3, l4 float64) error {
	radii := [NumLevels]float64{dot, l1, l2, l3, l4}
	if err := validateRadii(radii); err != nil {
		return err
	}
	c.Radii = radii
	return nil
}

// SetFudge replaces the fudge settings. A value outside [0, dot radius) is
// rejected and c is left untouched.
func (c *Config) SetFudge(value float64, enabled bool) error {
	if err := validateFudge(value, c.Radii[LevelDot]); err != nil {
		return err
	}
	c.Fudge = value
	c.FudgeEnabled = enabled
	return nil
}

// tolerance is the amount added to every containment radius.
func (c Config) tolerance() float64 {
	if c.FudgeEnabled {
		return c.Fudge
	}
	return 0
}

func validateRadii(r [NumLevels]float64) error {
	if !(r[LevelDot] > 0) {
		return fmt.Errorf("%w: dot radius %g", ErrRadiiOrder, r[LevelDot])
	}
	for l := Level1; l <= Level4; l++ {
		if !(r[l] > r[l-1]) {
			return fmt.Errorf("%w: %s radius %g not above %s radius %g",
				ErrRadiiOrder, l, r[l], l-1, r[l-1])
		}
	}
	return nil
}

func validateFudge(value, dotRadius float64) error {
	if !(value >= 0) || !(value < dotRadius) {
		return fmt.Errorf("%w: got %g with dot radius %g", ErrInvalidFudge, value, dotRadius)
	}
	return nil
}
