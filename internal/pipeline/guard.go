package pipeline

// latestGuard enforces latest-response-wins for one job. A sequence number
// is issued when a fetch starts; a result is accepted only if no later-issued
// fetch has already been applied. Callers hold Pipeline.mu.
type latestGuard struct {
	issued  uint64
	applied uint64
}

func (g *latestGuard) begin() uint64 {
	g.issued++
	return g.issued
}

func (g *latestGuard) accept(seq uint64) bool {
	if seq <= g.applied {
		return false
	}
	g.applied = seq
	return true
}

// guard returns the guard for a job name, creating it on first use. Callers hold p.mu.
func (p *Pipeline) guard(name string) *latestGuard {
	g, ok := p.guards[name]
	if !ok {
		g = &latestGuard{}
		p.guards[name] = g
	}
	return g
}
