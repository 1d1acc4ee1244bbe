package enzyme

// Pair indexes two entries of a boundary list.
type Pair struct {
	Start, End int
}

// Missed returns the number of internal boundaries the pair spans.
func (p Pair) Missed() int { return p.End - p.Start - 1 }

// Span is a half-open range of sequence offsets.
type Span struct {
	Start, End int
}

// Of returns the substring covered by the span.
func (s Span) Of(seq string) string { return seq[s.Start:s.End] }

// Len returns the span length.
func (s Span) Len() int { return s.End - s.Start }

// Expand lists every contiguous run of 1..maxMisses+1 fragments, ordered by
// start boundary and then by number of missed cleavages. Negative maxMisses
// is treated as zero.
func Expand(boundaries []int, maxMisses int) []Pair {
	n := len(boundaries)
	if n < 2 {
		return nil
	}
	if maxMisses < 0 {
		maxMisses = 0
	}

	pairs := make([]Pair, 0, SpanCount(n, maxMisses))
	for i := 0; i <= n-2; i++ {
		for k := 0; k <= maxMisses; k++ {
			end := i + 1 + k
			if end >= n {
				break
			}
			pairs = append(pairs, Pair{Start: i, End: end})
		}
	}
	return pairs
}

// Spans maps boundary index pairs to sequence offsets.
func Spans(boundaries []int, pairs []Pair) []Span {
	spans := make([]Span, len(pairs))
	for i, p := range pairs {
		spans[i] = Span{Start: boundaries[p.Start], End: boundaries[p.End]}
	}
	return spans
}

// SpanCount is the number of pairs Expand yields for n boundaries.
func SpanCount(n, maxMisses int) int {
	if maxMisses < 0 {
		maxMisses = 0
	}
	total := 0
	for i := 0; i <= n-2; i++ {
		total += min(maxMisses, n-2-i) + 1
	}
	return total
}
