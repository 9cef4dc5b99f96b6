package step

import "sort"

// RelabelSequential maps the distinct non-zero labels appearing
// anywhere in the grids onto the dense range {1..K}, keeping 0 for
// the background, and returns relabeled copies plus the mapping.
// Labels keep their relative order, so an already-compacted series
// maps onto itself and re-applying is a no-op.
func RelabelSequential(grids []*IntGrid) ([]*IntGrid, map[int]int) {
	seen := make(map[int]struct{})
	for _, g := range grids {
		for _, v := range g.data {
			if v != 0 {
				seen[v] = struct{}{}
			}
		}
	}
	labels := make([]int, 0, len(seen))
	for v := range seen {
		labels = append(labels, v)
	}
	sort.Ints(labels)

	mapping := make(map[int]int, len(labels)+1)
	mapping[0] = 0
	for i, v := range labels {
		mapping[v] = i + 1
	}

	out := make([]*IntGrid, len(grids))
	for i, g := range grids {
		c := g.Clone()
		for j, v := range c.data {
			c.data[j] = mapping[v]
		}
		out[i] = c
	}
	return out, mapping
}
