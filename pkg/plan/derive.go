package plan

// DeriveInfrastructure returns the number of infrastructure units needed for
// producers: one unit serves up to two producers, rounded up.
func DeriveInfrastructure(producers int) int {
	if producers <= 0 {
		return 0
	}
	return (producers + 1) / 2
}

// CountProducers sums the sanitized producer counts in q.
func (e *Engine) CountProducers(q Quantities) int {
	total := 0
	for _, id := range e.catalog.ProducerIDs() {
		total += q.Count(id)
	}
	return total
}

// CountProducersRaw sums producer counts of an unvalidated map. Values that
// are not finite non-negative numbers contribute 0.
func (e *Engine) CountProducersRaw(raw map[string]any) int {
	total := 0
	for _, id := range e.catalog.ProducerIDs() {
		total += CountOf(raw[id])
	}
	return total
}

// BuildFullConfig extends q with derived infrastructure counts.
//
// Producer counts are copied (sanitized); keys outside the catalog are
// dropped. Every infrastructure id is set to the derived count, replacing any
// value the caller supplied.
func (e *Engine) BuildFullConfig(q Quantities) FullConfig {
	producers := e.CountProducers(q)
	perDevice := DeriveInfrastructure(producers)

	out := make(Quantities, e.catalog.Len())
	for _, id := range e.catalog.ProducerIDs() {
		out[id] = q.Count(id)
	}

	infra := 0
	for _, id := range e.catalog.InfrastructureIDs() {
		out[id] = perDevice
		infra += perDevice
	}

	return FullConfig{
		Quantities: out,
		Meta: Metadata{
			ProducerCount:       producers,
			InfrastructureCount: infra,
		},
	}
}
