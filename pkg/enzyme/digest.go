package enzyme

import "fmt"

// Peptide is one digestion product.
type Peptide struct {
	Sequence        string
	Start           int // offset of the first residue
	End             int // offset one past the last residue
	MissedCleavages int
}

// region resolves an offset/length pair; a negative length means "to the
// end of seq".
func region(seq string, offset, length int) (int, error) {
	if offset < 0 || offset > len(seq) {
		return 0, fmt.Errorf("%w: offset %d for sequence of length %d", ErrRegion, offset, len(seq))
	}
	if length < 0 {
		return len(seq) - offset, nil
	}
	if offset+length > len(seq) {
		return 0, fmt.Errorf("%w: offset %d + length %d exceeds %d", ErrRegion, offset, length, len(seq))
	}
	return length, nil
}

// CleavageSites returns the boundary list for a region of seq.
func (r *Rule) CleavageSites(seq string, offset, length int) ([]int, error) {
	length, err := region(seq, offset, length)
	if err != nil {
		return nil, err
	}
	return Scan(seq, r, offset, length), nil
}

// SiteDigest returns the peptide spans of a region, allowing up to
// maxMisses missed cleavages per peptide.
func (r *Rule) SiteDigest(seq string, maxMisses, offset, length int) ([]Span, error) {
	bounds, err := r.CleavageSites(seq, offset, length)
	if err != nil {
		return nil, err
	}
	return Spans(bounds, Expand(bounds, maxMisses)), nil
}

// DigestRegion returns the peptide strings of a region in source order.
func (r *Rule) DigestRegion(seq string, maxMisses, offset, length int) ([]string, error) {
	spans, err := r.SiteDigest(seq, maxMisses, offset, length)
	if err != nil {
		return nil, err
	}
	peptides := make([]string, len(spans))
	for i, s := range spans {
		peptides[i] = s.Of(seq)
	}
	return peptides, nil
}

// Digest returns the peptides of the whole sequence.
func (r *Rule) Digest(seq string, maxMisses int) []string {
	peptides, _ := r.DigestRegion(seq, maxMisses, 0, len(seq))
	return peptides
}

// Peptides digests the whole sequence and keeps positions and missed
// cleavage counts.
func (r *Rule) Peptides(seq string, maxMisses int) []Peptide {
	bounds := Scan(seq, r, 0, len(seq))
	pairs := Expand(bounds, maxMisses)

	peptides := make([]Peptide, len(pairs))
	for i, p := range pairs {
		start, end := bounds[p.Start], bounds[p.End]
		peptides[i] = Peptide{
			Sequence:        seq[start:end],
			Start:           start,
			End:             end,
			MissedCleavages: p.Missed(),
		}
	}
	return peptides
}
