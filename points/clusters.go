// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package points

import (
	"fmt"

	"github.com/jcodagnone/sheetmap/spatial"
	"github.com/uber/h3-go/v4"
)

// maxResolution is the finest h3 resolution.
const maxResolution = 15

// Cluster is a group of points drawn as one marker.
type Cluster struct {
	// Cell is the h3 cell of the group; empty for distance clusters.
	Cell      string        `json:"cell,omitempty"`
	Center    spatial.Point `json:"center"`
	Indexes   []int         `json:"indexes"`
	Count     int           `json:"count"`
	Aggregate float64       `json:"aggregate"`
}

// Aggregate is the number shown on a cluster marker: the sum of labelField
// over the points that have a numeric value there, or the plain number of
// points when none has.
func Aggregate(pts []Point, labelField string) float64 {
	var (
		sum     float64
		numeric bool
	)

	if labelField != "" {
		for _, p := range pts {
			if v, ok := p.Row.Float(labelField); ok {
				sum += v
				numeric = true
			}
		}
	}

	if !numeric {
		return float64(len(pts))
	}

	return sum
}

// Clusters groups points by their h3 cell at resolution, keeping the order in
// which cells first appear.
func Clusters(pts []Point, resolution int, labelField string) ([]Cluster, error) {
	if resolution < 0 || resolution > maxResolution {
		return nil, fmt.Errorf("h3 resolution must be between 0 and %d (got %d)", maxResolution, resolution)
	}

	var (
		order  []h3.Cell
		groups = make(map[h3.Cell][]Point)
	)

	for _, p := range pts {
		cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), resolution)
		if err != nil {
			return nil, fmt.Errorf("error converting point %d to h3 cell at res %d: %w", p.Index, resolution, err)
		}

		if _, seen := groups[cell]; !seen {
			order = append(order, cell)
		}

		groups[cell] = append(groups[cell], p)
	}

	clusters := make([]Cluster, 0, len(order))
	for _, cell := range order {
		c := newCluster(groups[cell], labelField)
		c.Cell = cell.String()
		clusters = append(clusters, c)
	}

	return clusters, nil
}

// ClusterByDistance groups points that are within distance meters of any
// member of a group, in a single greedy pass over the input order.
func ClusterByDistance(pts []Point, distance float64, labelField string) []Cluster {
	clusters := make([]Cluster, 0, len(pts))
	visited := make([]bool, len(pts))

	for i := range pts {
		if visited[i] {
			continue
		}

		group := []Point{pts[i]}
		visited[i] = true

		for j := range pts {
			if visited[j] {
				continue
			}

			// Check distance against all members of the current group
			for k := range group {
				if group[k].HaversineDistance(&pts[j].Point) <= distance {
					group = append(group, pts[j])
					visited[j] = true

					break
				}
			}
		}

		clusters = append(clusters, newCluster(group, labelField))
	}

	return clusters
}

func newCluster(pts []Point, labelField string) Cluster {
	var lat, lng float64

	indexes := make([]int, len(pts))
	for i, p := range pts {
		lat += p.Lat
		lng += p.Lng
		indexes[i] = p.Index
	}

	n := float64(len(pts))

	return Cluster{
		Center:    spatial.Point{Lat: lat / n, Lng: lng / n},
		Indexes:   indexes,
		Count:     len(pts),
		Aggregate: Aggregate(pts, labelField),
	}
}
