package recipe

// Permutations returns every ordering of in, generated with Heap's
// algorithm. Repeated elements produce repeated orderings. The input is
// not modified.
func Permutations[T any](in []T) [][]T {
	work := cloneSlice(in)
	out := [][]T{cloneSlice(work)}
	if len(work) < 2 {
		return out
	}
	c := make([]int, len(work))
	for i := 1; i < len(work); {
		if c[i] < i {
			if i%2 == 0 {
				work[0], work[i] = work[i], work[0]
			} else {
				work[c[i]], work[i] = work[i], work[c[i]]
			}
			out = append(out, cloneSlice(work))
			c[i]++
			i = 1
		} else {
			c[i] = 0
			i++
		}
	}
	return out
}

// CartesianProduct returns every combination picking one element from each
// set, in order. An empty set list yields one empty combination; any empty
// set yields none.
func CartesianProduct[T any](sets [][]T) [][]T {
	out := [][]T{{}}
	for _, set := range sets {
		next := make([][]T, 0, len(out)*len(set))
		for _, prefix := range out {
			for _, v := range set {
				combo := make([]T, len(prefix), len(prefix)+1)
				copy(combo, prefix)
				next = append(next, append(combo, v))
			}
		}
		out = next
	}
	return out
}

// permutationCount returns n!, saturating at limit+1 so callers can compare
// against limit without overflow.
func permutationCount(n, limit int) int {
	total := 1
	for i := 2; i <= n; i++ {
		total *= i
		if total > limit {
			return limit + 1
		}
	}
	return total
}

func cloneSlice[T any](s []T) []T {
	c := make([]T, len(s))
	copy(c, s)
	return c
}
