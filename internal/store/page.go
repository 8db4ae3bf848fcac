package store

// Page is an offset window over a list ordered by a stable key.
type Page struct {
	Offset int
	Limit  int
}

// normalize rejects negative bounds and clamps the limit to max.
func (p Page) normalize(max int) (Page, error) {
	if p.Offset < 0 {
		return p, invalidf("skip", "must be >= 0, got %d", p.Offset)
	}
	if p.Limit < 0 {
		return p, invalidf("limit", "must be >= 0, got %d", p.Limit)
	}
	if max > 0 && p.Limit > max {
		p.Limit = max
	}
	return p, nil
}
