package dotcluster

import "strconv"

// Level identifies a tier of the hierarchy. A cluster of level L only ever
// holds elements whose level is below L.
type Level uint8

const (
	LevelDot Level = iota
	Level1
	Level2
	Level3
	Level4
)

// NumLevels is the number of tiers, dots included.
const NumLevels = 5

// Valid reports whether l is one of LevelDot..Level4.
func (l Level) Valid() bool { return l <= Level4 }

// IsCluster reports whether l is a cluster tier (Level1..Level4).
func (l Level) IsCluster() bool { return l >= Level1 && l <= Level4 }

func (l Level) String() string {
	switch {
	case l == LevelDot:
		return "dot"
	case l.IsCluster():
		return "L" + strconv.Itoa(int(l))
	default:
		return "Level(" + strconv.Itoa(int(l)) + ")"
	}
}
