// Package sequence computes minimal edit splices between ordered slices.
package sequence

// Splice describes one contiguous edit: at Start in the old sequence,
// Deleted elements are removed and Inserted elements take their place.
type Splice[T any] struct {
	Start    int
	Deleted  []T
	Inserted []T
}

// Diff returns the splices that transform old into new, derived from a
// longest common subsequence under eq. Splices are ordered by ascending
// Start and never overlap. Applying them back-to-front keeps earlier
// Start indices valid while later ones are processed.
func Diff[T any](old, new []T, eq func(a, b T) bool) []Splice[T] {
	n, m := len(old), len(new)

	// lcs[i][j] is the LCS length of old[i:] and new[j:].
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			switch {
			case eq(old[i], new[j]):
				lcs[i][j] = lcs[i+1][j+1] + 1
			case lcs[i+1][j] >= lcs[i][j+1]:
				lcs[i][j] = lcs[i+1][j]
			default:
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var splices []Splice[T]
	i, j := 0, 0
	for i < n || j < m {
		if i < n && j < m && eq(old[i], new[j]) {
			i, j = i+1, j+1
			continue
		}

		sp := Splice[T]{Start: i}
		for i < n || j < m {
			if i < n && j < m && eq(old[i], new[j]) {
				break
			}
			if j >= m || (i < n && lcs[i+1][j] >= lcs[i][j+1]) {
				sp.Deleted = append(sp.Deleted, old[i])
				i++
			} else {
				sp.Inserted = append(sp.Inserted, new[j])
				j++
			}
		}
		splices = append(splices, sp)
	}

	return splices
}
