package diff

// longestCommonSubsequence returns the position pairs of a longest common
// subsequence of a and b under the given equality.
func longestCommonSubsequence(a, b []int, eq func(x, y int) bool) [][2]int {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return nil
	}

	lens := make([][]int, n+1)
	for i := range lens {
		lens[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if eq(a[i], b[j]) {
				lens[i][j] = lens[i+1][j+1] + 1
			} else {
				lens[i][j] = max(lens[i+1][j], lens[i][j+1])
			}
		}
	}

	out := make([][2]int, 0, lens[0][0])
	for i, j := 0, 0; i < n && j < m; {
		switch {
		case eq(a[i], b[j]):
			out = append(out, [2]int{i, j})
			i++
			j++
		case lens[i+1][j] >= lens[i][j+1]:
			i++
		default:
			j++
		}
	}
	return out
}
