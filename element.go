package dotcluster

import (
	"maps"
	"math"
	"slices"
)

// TagUnset is the tag value of an element nobody has tagged yet.
const TagUnset uint64 = math.MaxUint64

// Element is the contract shared by dots and clusters of every level.
type Element interface {
	// Level is the tier the element lives on.
	Level() Level
	// Key is the element's position: fixed for a dot, the centroid for a
	// cluster.
	Key() CoordKey
	// InCluster reports whether a higher-level cluster has claimed it.
	InCluster() bool
	// Tag returns the caller-defined marker, TagUnset if none.
	Tag() uint64
	// SetTagIfEmpty stores v unless a tag is already set.
	SetTagIfEmpty(v uint64)
	// HasTag reports whether the element's own tag equals v.
	HasTag(v uint64) bool
	// HasTagInSubtree reports whether the element or anything below it
	// carries tag v.
	HasTagInSubtree(v uint64) bool
	// Count is the number of payloads in the subtree.
	Count() int
	// Payloads returns the sorted, deduplicated payload ids of the subtree.
	Payloads() []uint64
}

// node is the internal side of an element: ownership and claim bookkeeping
// that only the builder and the stores touch.
type node interface {
	Element
	claimedBy() Level
	setClaim(Level)
	setRef(ref)
	handle() ref
}

// base carries the fields common to every element. claim is the level of
// the cluster holding the element, LevelDot while it is free.
type base struct {
	key   CoordKey
	claim Level
	tag   uint64
	ref   ref
}

func newBase(k CoordKey) base { return base{key: k, tag: TagUnset} }

func (b *base) Key() CoordKey        { return b.key }
func (b *base) InCluster() bool      { return b.claim != LevelDot }
func (b *base) Tag() uint64          { return b.tag }
func (b *base) HasTag(v uint64) bool { return b.tag == v }
func (b *base) claimedBy() Level     { return b.claim }
func (b *base) setClaim(l Level)     { b.claim = l }
func (b *base) setRef(r ref)         { b.ref = r }
func (b *base) handle() ref          { return b.ref }

func (b *base) SetTagIfEmpty(v uint64) {
	if b.tag == TagUnset {
		b.tag = v
	}
}

// Dot is a leaf: a fixed position holding a set of payload ids.
type Dot struct {
	base
	payloads map[uint64]struct{}
}

func newDot(k CoordKey) *Dot {
	return &Dot{base: newBase(k), payloads: make(map[uint64]struct{})}
}

func (d *Dot) Level() Level { return LevelDot }

// X and Y are the dot's coordinates.
func (d *Dot) X() float64 { return d.key.X }
func (d *Dot) Y() float64 { return d.key.Y }

// Count is the number of distinct payloads stored at this coordinate.
func (d *Dot) Count() int { return len(d.payloads) }

func (d *Dot) Payloads() []uint64 {
	return slices.Sorted(maps.Keys(d.payloads))
}

func (d *Dot) HasTagInSubtree(v uint64) bool { return d.HasTag(v) }

func (d *Dot) addPayload(p uint64) { d.payloads[p] = struct{}{} }

// Cluster groups elements of lower levels. Its children are handles into
// the stores that own them; a cluster never owns what it references.
type Cluster struct {
	base
	level    Level
	owner    *Clusterizator
	children [NumLevels - 1]map[CoordKey]ref
}

func newCluster(owner *Clusterizator, l Level) *Cluster {
	return &Cluster{base: newBase(CoordKey{}), level: l, owner: owner}
}

func (c *Cluster) Level() Level { return c.level }

// X and Y are the cluster's centroid.
func (c *Cluster) X() float64 { return c.key.X }
func (c *Cluster) Y() float64 { return c.key.Y }

// Radius is the absorption radius of the cluster's level.
func (c *Cluster) Radius() float64 { return c.owner.cfg.Radius(c.level) }

// Len is the number of immediate children.
func (c *Cluster) Len() int {
	n := 0
	for _, m := range c.children {
		n += len(m)
	}
	return n
}

// Children returns the live immediate children of level l in key order.
func (c *Cluster) Children(l Level) []Element {
	if l >= c.level {
		return nil
	}
	m := c.children[l]
	out := make([]Element, 0, len(m))
	for _, k := range slices.SortedFunc(maps.Keys(m), CompareKeys) {
		if e, ok := c.owner.resolve(l, m[k]); ok {
			out = append(out, e)
		}
	}
	return out
}

// Count sums the payload counts of all children.
func (c *Cluster) Count() int {
	n := 0
	c.walk(func(e node) bool {
		n += e.Count()
		return true
	})
	return n
}

func (c *Cluster) Payloads() []uint64 {
	set := make(map[uint64]struct{})
	c.walk(func(e node) bool {
		for _, p := range e.Payloads() {
			set[p] = struct{}{}
		}
		return true
	})
	return slices.Sorted(maps.Keys(set))
}

// HasTagInSubtree checks the cluster itself, then its children from the
// highest child level down, each level in key order.
func (c *Cluster) HasTagInSubtree(v uint64) bool {
	if c.HasTag(v) {
		return true
	}
	found := false
	c.walk(func(e node) bool {
		found = e.HasTagInSubtree(v)
		return !found
	})
	return found
}

// CanAccept reports whether e may be attached: it must sit on a lower level
// and inside this cluster's circle.
func (c *Cluster) CanAccept(e Element) bool {
	if e.Level() >= c.level {
		return false
	}
	k := e.Key()
	return c.owner.cfg.CircleContains(c.key.X, c.key.Y, c.Radius(), k.X, k.Y)
}

// CanAbsorb reports whether other's centroid lies inside this cluster's
// circle. Both clusters must share a level.
func (c *Cluster) CanAbsorb(other *Cluster) bool {
	if other == nil || other == c || other.level != c.level {
		return false
	}
	return c.owner.cfg.CircleContains(c.key.X, c.key.Y, c.Radius(), other.key.X, other.key.Y)
}

// attach claims e as a child and moves the centroid.
func (c *Cluster) attach(e node) {
	l := e.Level()
	if l >= c.level {
		return
	}
	if c.children[l] == nil {
		c.children[l] = make(map[CoordKey]ref)
	}
	c.children[l][e.Key()] = e.handle()
	e.setClaim(c.level)
	c.recomputeCentroid()
}

// absorb takes over every child of other and empties it. other must not be
// used afterwards.
func (c *Cluster) absorb(other *Cluster) {
	for l, m := range other.children {
		if len(m) == 0 {
			continue
		}
		if c.children[l] == nil {
			c.children[l] = make(map[CoordKey]ref, len(m))
		}
		maps.Copy(c.children[l], m)
		other.children[l] = nil
	}
	other.recomputeCentroid()
	c.recomputeCentroid()
}

// RecomputeCentroid resets the position to the unweighted mean of the
// immediate children's positions, or the origin when there are none.
// A large sub-cluster weighs the same as a single dot.
func (c *Cluster) RecomputeCentroid() { c.recomputeCentroid() }

func (c *Cluster) recomputeCentroid() {
	c.key = centroid(c.childKeys())
}

// childKeys lists live child positions by level, each level in key order.
func (c *Cluster) childKeys() []CoordKey {
	keys := make([]CoordKey, 0, c.Len())
	for l, m := range c.children {
		for _, k := range slices.SortedFunc(maps.Keys(m), CompareKeys) {
			if _, ok := c.owner.resolve(Level(l), m[k]); ok {
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// walk visits live children from the highest child level down, each level
// in key order, until fn returns false.
func (c *Cluster) walk(fn func(node) bool) {
	for l := int(c.level) - 1; l >= 0; l-- {
		m := c.children[l]
		if len(m) == 0 {
			continue
		}
		for _, k := range slices.SortedFunc(maps.Keys(m), CompareKeys) {
			e, ok := c.owner.resolve(Level(l), m[k])
			if !ok {
				continue
			}
			if !fn(e) {
				return
			}
		}
	}
}

// release frees every live child still claimed by this cluster's level.
// A child that a lower level has claimed since is left alone.
func (c *Cluster) release() {
	c.walk(func(e node) bool {
		if e.claimedBy() == c.level {
			e.setClaim(LevelDot)
		}
		return true
	})
}
