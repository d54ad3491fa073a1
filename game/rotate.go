package game

// RotateToFirst returns the ids in the same cyclic order rotated so target
// is first. If target is absent or already first the order is returned
// unchanged. Always returns a fresh slice so callers may mutate the result.
func RotateToFirst(ids []string, target string) []string {
	i := -1
	for j, id := range ids {
		if id == target {
			i = j
			break
		}
	}
	out := make([]string, 0, len(ids))
	if i <= 0 {
		return append(out, ids...)
	}
	out = append(out, ids[i:]...)
	return append(out, ids[:i]...)
}
