package links

// Accumulator collects the union of URLs confirmed reachable across the
// attempts of a single question workflow. A later attempt whose answer text
// dropped a previously-proven URL still inherits it from here. One
// Accumulator per workflow run; never shared across questions.
type Accumulator struct {
	seen map[string]bool
	urls []string
}

func NewAccumulator() *Accumulator {
	return &Accumulator{seen: make(map[string]bool)}
}

// Add unions newly-validated URLs into the set. Dedup is by exact string
// match; insertion order is preserved for stable output.
func (a *Accumulator) Add(urls []string) {
	for _, u := range urls {
		if u == "" || a.seen[u] {
			continue
		}
		a.seen[u] = true
		a.urls = append(a.urls, u)
	}
}

// Links returns a snapshot of the accumulated set.
func (a *Accumulator) Links() []string {
	out := make([]string, len(a.urls))
	copy(out, a.urls)
	return out
}

func (a *Accumulator) IsEmpty() bool {
	return len(a.urls) == 0
}
