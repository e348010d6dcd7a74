// Package dotcluster groups planar points ("dots") into a four-level
// hierarchy of spatial clusters so that a map can show either raw dots or
// progressively coarser cluster markers as the zoom level changes.
//
// Every level has its own absorption radius. Building level N looks at all
// elements below N that no cluster has claimed yet and greedily pairs the
// ones that lie within the level's radius, lets the resulting clusters pick
// up nearby stragglers, and merges clusters whose centroids fall inside one
// another, repeating until nothing changes. Optionally, elements that could
// not be grouped become single-child clusters.
//
// Basic usage:
//
//	cz, err := dotcluster.New(dotcluster.DefaultConfig())
//	cz.AddDot(0, 0, 7)
//	cz.AddDot(5, 0, 9)
//	for l := dotcluster.Level1; l <= dotcluster.Level4; l++ {
//		_, err = cz.BuildLevel(l, false)
//	}
//	markers := cz.Visible(dotcluster.Level1)
//
// Levels must be built in ascending order whenever the displayed zoom range
// changes: each build consumes what the previous one left unclaimed.
//
// # Ownership
//
// Each level's elements are owned by a single store. A cluster only holds
// handles to its children; destroying a level invalidates those handles
// instead of freeing anything twice, and queries skip stale handles.
//
// # Centroids
//
// A cluster's position is the unweighted mean of its immediate children, so
// a sub-cluster of a thousand dots pulls on its parent exactly as hard as a
// lone dot does.
//
// A Clusterizator is not safe for concurrent use. Use a [Registry] to manage
// several independent instances by id.
package dotcluster
