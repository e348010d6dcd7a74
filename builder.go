package dotcluster

import "slices"

// BuildStats describes one level build.
type BuildStats struct {
	// Level is the level that was rebuilt.
	Level Level
	// FreeElements is the number of lower-level elements offered to the build.
	FreeElements int
	// Iterations counts passes of the seed/attach/absorb loop, including the
	// final pass that changed nothing.
	Iterations int
	// Clusters is the number of clusters committed at Level.
	Clusters int
	// Promoted is the number of leftover elements wrapped into their own
	// cluster because singleton promotion was requested.
	Promoted int
	// Unclustered is the number of offered elements left outside any cluster.
	Unclustered int
}

// buildLevel rebuilds the store of one cluster level from every unclaimed
// element below it. The same algorithm serves all four levels; they differ
// only in radius and in which child levels a cluster accepts.
func (cz *Clusterizator) buildLevel(level Level, promoteSingletons bool) BuildStats {
	stats := BuildStats{Level: level}
	radius := cz.cfg.Radius(level)

	free := cz.collectFree(level)
	stats.FreeElements = len(free)

	var working []*Cluster
	for changed := true; changed; {
		stats.Iterations++
		var seeded, attached, absorbed bool
		free, working, seeded = cz.seedPass(level, radius, free, working)
		free, attached = attachPass(free, working)
		working, absorbed = absorbPass(working)
		changed = seeded || attached || absorbed
	}

	if promoteSingletons {
		for _, e := range free {
			c := newCluster(cz, level)
			c.attach(e)
			working = append(working, c)
		}
		stats.Promoted = len(free)
		free = free[:0]
		for absorbed := true; absorbed; {
			working, absorbed = absorbPass(working)
		}
	}
	stats.Unclustered = len(free)

	cz.commit(level, working)
	stats.Clusters = cz.clusterStore(level).len()
	return stats
}

// collectFree releases the claims the current level store still holds,
// resets the level directly below and returns every unclaimed element under
// level, lowest level first and each level in key order.
func (cz *Clusterizator) collectFree(level Level) []node {
	for _, c := range cz.clusterStore(level).ordered() {
		c.release()
	}

	var free []node
	for l := LevelDot; l < level; l++ {
		reset := l == level-1
		cz.eachOrdered(l, func(e node) {
			if reset {
				e.setClaim(LevelDot)
			}
			if !e.InCluster() {
				free = append(free, e)
			}
		})
	}
	return free
}

// seedPass pairs unclaimed elements that lie within radius of each other
// into new clusters. Each element i is compared with the elements after it;
// the first match forms a cluster and both leave the free list.
func (cz *Clusterizator) seedPass(level Level, radius float64, free []node, working []*Cluster) ([]node, []*Cluster, bool) {
	changed := false
	for i := 0; i < len(free); {
		removedI := false
		for j := i + 1; j < len(free); {
			if free[i].InCluster() {
				free = slices.Delete(free, i, i+1)
				removedI = true
				break
			}
			if free[j].InCluster() {
				free = slices.Delete(free, j, j+1)
				continue
			}
			a, b := free[i].Key(), free[j].Key()
			if !cz.cfg.CircleContains(a.X, a.Y, radius, b.X, b.Y) {
				j++
				continue
			}
			c := newCluster(cz, level)
			c.attach(free[i])
			c.attach(free[j])
			working = append(working, c)
			changed = true
			free = slices.Delete(free, j, j+1)
			free = slices.Delete(free, i, i+1)
			removedI = true
			break
		}
		if !removedI {
			i++
		}
	}
	return free, working, changed
}

// attachPass lets every working cluster, in creation order, take each free
// element that falls inside its circle.
func attachPass(free []node, working []*Cluster) ([]node, bool) {
	changed := false
	for _, c := range working {
		for k := 0; k < len(free); {
			if c.CanAccept(free[k]) {
				c.attach(free[k])
				free = slices.Delete(free, k, k+1)
				changed = true
				continue
			}
			k++
		}
	}
	return free, changed
}

// absorbPass merges same-level clusters. For i before j in creation order,
// j absorbs i when i's centroid falls inside j's circle; absorption always
// flows toward the later cluster.
func absorbPass(working []*Cluster) ([]*Cluster, bool) {
	changed := false
	for i := 0; i < len(working); {
		absorbed := false
		for j := i + 1; j < len(working); j++ {
			if working[j].CanAbsorb(working[i]) {
				working[j].absorb(working[i])
				working = slices.Delete(working, i, i+1)
				absorbed = true
				changed = true
				break
			}
		}
		if !absorbed {
			i++
		}
	}
	return working, changed
}

// commit destroys the previous store of level and re-keys the working
// clusters by their final centroids.
func (cz *Clusterizator) commit(level Level, working []*Cluster) {
	s := cz.clusterStore(level)
	s.clear()
	for _, c := range working {
		if s.insert(c.Key(), c) {
			continue
		}
		// Unreachable after the absorb loop for any non-negative radius:
		// the earlier cluster with this centroid is folded into c.
		key := c.Key()
		prev, _ := s.lookup(key)
		s.arena.remove(prev.handle())
		delete(s.index, key)
		c.absorb(prev)
		s.insert(c.Key(), c)
	}
}
