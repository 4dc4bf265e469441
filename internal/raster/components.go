package raster

// Components labels 8-connected regions of set cells (defined, positive).
// labels holds 0 for background and 1..n for each region; counts[k-1] is
// the cell count of region k. Labeling a dissolved mask both dissolves
// touching patches and splits disjoint ones, which is how multi-part
// patch geometries are separated back into single patches.
func Components(r *Raster) (labels []int, counts []int) {
	grid := r.Grid
	labels = make([]int, grid.Cols*grid.Rows)
	next := 0

	set := func(i int) bool {
		return r.Data[i] != r.NoData && r.Data[i] > 0
	}

	var stack []int
	for start := range r.Data {
		if !set(start) || labels[start] != 0 {
			continue
		}
		next++
		count := 0
		stack = append(stack[:0], start)
		labels[start] = next

		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			count++

			col := i % grid.Cols
			row := i / grid.Cols
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					c, w := col+dx, row+dy
					if c < 0 || c >= grid.Cols || w < 0 || w >= grid.Rows {
						continue
					}
					j := w*grid.Cols + c
					if set(j) && labels[j] == 0 {
						labels[j] = next
						stack = append(stack, j)
					}
				}
			}
		}
		counts = append(counts, count)
	}
	return labels, counts
}
