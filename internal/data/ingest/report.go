package ingest

// KindCount is the per-kind outcome of a session.
type KindCount struct {
	Kind     Kind `json:"kind"`
	Created  int  `json:"created"`
	Existing int  `json:"existing"`
}

// Report tallies what a session created versus what was already present.
// Kinds are listed in registry order and only when touched.
type Report struct {
	Created  int         `json:"created"`
	Existing int         `json:"existing"`
	Kinds    []KindCount `json:"kinds"`
}

type tally struct {
	order  []*Spec
	counts map[Kind]*KindCount
}

func newTally() *tally {
	return &tally{counts: map[Kind]*KindCount{}}
}

func (t *tally) get(s *Spec) *KindCount {
	c, ok := t.counts[s.Kind]
	if !ok {
		c = &KindCount{Kind: s.Kind}
		t.counts[s.Kind] = c
		i := len(t.order)
		t.order = append(t.order, s)
		for i > 0 && t.order[i-1].order > s.order {
			t.order[i], t.order[i-1] = t.order[i-1], t.order[i]
			i--
		}
	}
	return c
}

func (t *tally) created(s *Spec)  { t.get(s).Created++ }
func (t *tally) existing(s *Spec) { t.get(s).Existing++ }

// raced moves one record from created to existing, used when another
// writer inserted the same identity between lookup and finalization.
func (t *tally) raced(s *Spec) {
	c := t.get(s)
	c.Created--
	c.Existing++
}

func (t *tally) report() *Report {
	r := &Report{Kinds: make([]KindCount, 0, len(t.order))}
	for _, s := range t.order {
		c := *t.counts[s.Kind]
		r.Created += c.Created
		r.Existing += c.Existing
		r.Kinds = append(r.Kinds, c)
	}
	return r
}

func (t *tally) clone() *tally {
	cp := &tally{order: append([]*Spec(nil), t.order...), counts: make(map[Kind]*KindCount, len(t.counts))}
	for k, v := range t.counts {
		c := *v
		cp.counts[k] = &c
	}
	return cp
}

// Kind returns the counts for one kind, zero if untouched.
func (r *Report) Kind(kind Kind) KindCount {
	for _, c := range r.Kinds {
		if c.Kind == kind {
			return c
		}
	}
	return KindCount{Kind: kind}
}
