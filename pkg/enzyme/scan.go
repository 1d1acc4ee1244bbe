package enzyme

// Scan returns the cleavage boundaries of seq[offset:offset+length].
//
// The result starts with offset, ends with offset+length and is strictly
// increasing. Whitespace following a cleavage residue stays with the
// preceding fragment. The caller must pass a valid region; see
// Rule.CleavageSites for a checked variant.
func Scan(seq string, r *Rule, offset, length int) []int {
	limit := offset + length
	bounds := []int{offset}
	if length == 0 {
		return append(bounds, offset)
	}

	last := offset
	for i := offset; i < limit; i++ {
		if !r.cleaves[seq[i]] {
			continue
		}

		next := i + 1
		for next < len(seq) && isSpace(seq[next]) {
			next++
		}

		pos := next
		if r.sense == CleavesBefore {
			pos = i
		}

		if r.hasExc && next < len(seq) && seq[next] == r.exception {
			continue
		}
		if pos > limit {
			break
		}
		if pos <= last {
			continue
		}

		bounds = append(bounds, pos)
		last = pos
	}

	if last != limit {
		bounds = append(bounds, limit)
	}
	return bounds
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
