package dotcluster

import (
	"fmt"
	"log/slog"
	"time"
)

// Clusterizator owns one complete hierarchy: the dots and the four cluster
// levels built over them, together with the geometry settings used to build
// them. A Clusterizator is not safe for concurrent use; distinct instances
// share nothing and may be used from different goroutines.
type Clusterizator struct {
	cfg      Config
	dots     store[*Dot]
	clusters [NumLevels - 1]store[*Cluster]

	logger  *slog.Logger
	metrics *Metrics
}

// Option configures a Clusterizator.
type Option func(*Clusterizator)

// WithLogger sends build diagnostics to l. The default discards them.
func WithLogger(l *slog.Logger) Option {
	return func(cz *Clusterizator) {
		if l != nil {
			cz.logger = l
		}
	}
}

// WithMetrics records builds and insertions in m.
func WithMetrics(m *Metrics) Option {
	return func(cz *Clusterizator) { cz.metrics = m }
}

// Point is one dot to load, with the payloads stored at it.
type Point struct {
	X, Y     float64
	Payloads []uint64
}

// ElementInfo is a snapshot of one element, as a renderer needs it.
type ElementInfo struct {
	Level     Level
	X, Y      float64
	Radius    float64
	InCluster bool
	Count     int
	Tag       uint64
}

// New returns an empty Clusterizator using cfg.
func New(cfg Config, opts ...Option) (*Clusterizator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cz := &Clusterizator{
		cfg:    cfg,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(cz)
	}
	return cz, nil
}

// Config returns a copy of the current settings.
func (cz *Clusterizator) Config() Config { return cz.cfg }

// SetRadii replaces the five radii. A non-ascending set is rejected and the
// current radii are kept. Existing clusters keep their membership until
// their level is rebuilt.
func (cz *Clusterizator) SetRadii(dot, l1, l2, l3, l4 float64) error {
	return cz.cfg.SetRadii(dot, l1, l2, l3, l4)
}

// SetFudge replaces the fudge tolerance. Values outside [0, dot radius) are
// rejected and the current settings are kept.
func (cz *Clusterizator) SetFudge(value float64, enabled bool) error {
	return cz.cfg.SetFudge(value, enabled)
}

// AddDot inserts a dot at (x, y), or adds payloads to the dot already there.
// The returned slot gives access to the dot's tag for as long as it lives.
func (cz *Clusterizator) AddDot(x, y float64, payloads ...uint64) TagSlot {
	k := CoordKey{X: x, Y: y}
	d, ok := cz.dots.lookup(k)
	if !ok {
		d = newDot(k)
		cz.dots.insert(k, d)
		if cz.metrics != nil {
			cz.metrics.DotsInserted.Inc()
		}
	}
	for _, p := range payloads {
		d.addPayload(p)
	}
	return TagSlot{dots: &cz.dots, ref: d.handle()}
}

// LoadDots replaces the whole hierarchy with the given dots. Points sharing
// a coordinate are merged into one dot.
func (cz *Clusterizator) LoadDots(points []Point) {
	cz.Clear()
	for _, p := range points {
		cz.AddDot(p.X, p.Y, p.Payloads...)
	}
}

// BuildLevel rebuilds the clusters of level from every element below it
// that no cluster has claimed. Levels are meant to be built in ascending
// order, since each one consumes what the previous one left. When
// promoteSingletons is set, elements that could not be grouped become
// clusters of their own, so everything below level ends up represented.
func (cz *Clusterizator) BuildLevel(level Level, promoteSingletons bool) (BuildStats, error) {
	if !level.IsCluster() {
		return BuildStats{}, fmt.Errorf("%w: cannot build %s", ErrInvalidLevel, level)
	}
	start := time.Now()
	stats := cz.buildLevel(level, promoteSingletons)
	elapsed := time.Since(start)

	if cz.metrics != nil {
		cz.metrics.observe(stats, elapsed)
	}
	cz.logger.Debug("level built",
		"level", level.String(),
		"promote", promoteSingletons,
		"free", stats.FreeElements,
		"iterations", stats.Iterations,
		"clusters", stats.Clusters,
		"promoted", stats.Promoted,
		"unclustered", stats.Unclustered,
		"elapsed", elapsed,
	)
	return stats, nil
}

// ClearClusters drops every cluster level, highest first, and releases all
// dots. Dot positions, payloads and tags are kept.
func (cz *Clusterizator) ClearClusters() {
	for l := Level4; l >= Level1; l-- {
		cz.clusterStore(l).clear()
	}
	for _, d := range cz.dots.ordered() {
		d.setClaim(LevelDot)
	}
}

// Clear drops the whole hierarchy, dots included.
func (cz *Clusterizator) Clear() {
	for l := Level4; l >= Level1; l-- {
		cz.clusterStore(l).clear()
	}
	cz.dots.clear()
}

// Len returns the number of elements on level.
func (cz *Clusterizator) Len(level Level) int {
	switch {
	case level == LevelDot:
		return cz.dots.len()
	case level.IsCluster():
		return cz.clusterStore(level).len()
	default:
		return 0
	}
}

// PayloadCount sums Count over every element of level.
func (cz *Clusterizator) PayloadCount(level Level) int {
	if !level.Valid() {
		return 0
	}
	n := 0
	cz.eachOrdered(level, func(e node) { n += e.Count() })
	return n
}

// TotalPayloadCount sums PayloadCount over all levels, so a payload is
// counted once for every level whose elements reach it.
func (cz *Clusterizator) TotalPayloadCount() int {
	n := 0
	for l := LevelDot; l <= Level4; l++ {
		n += cz.PayloadCount(l)
	}
	return n
}

// Lookup returns the element of level sitting exactly at (x, y).
func (cz *Clusterizator) Lookup(level Level, x, y float64) (Element, bool) {
	e, ok := cz.lookup(level, CoordKey{X: x, Y: y})
	if !ok {
		return nil, false
	}
	return e, true
}

// ElementPayloadCount returns Count of the element of level at (x, y).
func (cz *Clusterizator) ElementPayloadCount(level Level, x, y float64) (int, error) {
	e, err := cz.find(level, x, y)
	if err != nil {
		return 0, err
	}
	return e.Count(), nil
}

// Payloads returns the payload ids reachable from the element of level at
// (x, y), sorted and deduplicated.
func (cz *Clusterizator) Payloads(level Level, x, y float64) ([]uint64, error) {
	e, err := cz.find(level, x, y)
	if err != nil {
		return nil, err
	}
	return e.Payloads(), nil
}

// HasTag reports whether the element of level at (x, y) carries tag.
// Missing elements carry nothing.
func (cz *Clusterizator) HasTag(level Level, x, y float64, tag uint64) bool {
	e, ok := cz.lookup(level, CoordKey{X: x, Y: y})
	return ok && e.HasTag(tag)
}

// HasTagInSubtree reports whether the element of level at (x, y), or any
// element below it, carries tag.
func (cz *Clusterizator) HasTagInSubtree(level Level, x, y float64, tag uint64) bool {
	e, ok := cz.lookup(level, CoordKey{X: x, Y: y})
	return ok && e.HasTagInSubtree(tag)
}

// Elements returns a snapshot of every element of level in key order.
func (cz *Clusterizator) Elements(level Level) []ElementInfo {
	if !level.Valid() {
		return nil
	}
	out := make([]ElementInfo, 0, cz.Len(level))
	cz.eachOrdered(level, func(e node) { out = append(out, cz.info(e)) })
	return out
}

// Visible returns the elements of level that no cluster has claimed: the
// markers a map shows for that level.
func (cz *Clusterizator) Visible(level Level) []ElementInfo {
	var out []ElementInfo
	for _, info := range cz.Elements(level) {
		if !info.InCluster {
			out = append(out, info)
		}
	}
	return out
}

func (cz *Clusterizator) info(e node) ElementInfo {
	k := e.Key()
	return ElementInfo{
		Level:     e.Level(),
		X:         k.X,
		Y:         k.Y,
		Radius:    cz.cfg.Radius(e.Level()),
		InCluster: e.InCluster(),
		Count:     e.Count(),
		Tag:       e.Tag(),
	}
}

func (cz *Clusterizator) find(level Level, x, y float64) (node, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLevel, level)
	}
	e, ok := cz.lookup(level, CoordKey{X: x, Y: y})
	if !ok {
		return nil, fmt.Errorf("%w: %s at (%g, %g)", ErrNotFound, level, x, y)
	}
	return e, nil
}

func (cz *Clusterizator) clusterStore(l Level) *store[*Cluster] {
	return &cz.clusters[l-1]
}

func (cz *Clusterizator) lookup(l Level, k CoordKey) (node, bool) {
	switch {
	case l == LevelDot:
		if d, ok := cz.dots.lookup(k); ok {
			return d, true
		}
	case l.IsCluster():
		if c, ok := cz.clusterStore(l).lookup(k); ok {
			return c, true
		}
	}
	return nil, false
}

func (cz *Clusterizator) resolve(l Level, r ref) (node, bool) {
	switch {
	case l == LevelDot:
		if d, ok := cz.dots.resolve(r); ok {
			return d, true
		}
	case l.IsCluster():
		if c, ok := cz.clusterStore(l).resolve(r); ok {
			return c, true
		}
	}
	return nil, false
}

func (cz *Clusterizator) eachOrdered(l Level, fn func(node)) {
	switch {
	case l == LevelDot:
		for _, d := range cz.dots.ordered() {
			fn(d)
		}
	case l.IsCluster():
		for _, c := range cz.clusterStore(l).ordered() {
			fn(c)
		}
	}
}

// TagSlot is a stable reference to the tag of one dot. It stops working,
// without failing, once the dot is destroyed by Clear or LoadDots.
type TagSlot struct {
	dots *store[*Dot]
	ref  ref
}

// Valid reports whether the dot behind the slot still exists.
func (s TagSlot) Valid() bool {
	if s.dots == nil {
		return false
	}
	_, ok := s.dots.resolve(s.ref)
	return ok
}

// Tag returns the dot's tag, or TagUnset if the dot is gone.
func (s TagSlot) Tag() uint64 {
	if s.dots == nil {
		return TagUnset
	}
	d, ok := s.dots.resolve(s.ref)
	if !ok {
		return TagUnset
	}
	return d.Tag()
}

// SetIfEmpty tags the dot unless it is already tagged. It reports whether
// the dot still exists.
func (s TagSlot) SetIfEmpty(v uint64) bool {
	if s.dots == nil {
		return false
	}
	d, ok := s.dots.resolve(s.ref)
	if !ok {
		return false
	}
	d.SetTagIfEmpty(v)
	return true
}
