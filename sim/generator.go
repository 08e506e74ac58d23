package sim

// WorkGenerator decides how many work units a client produces in a round.
// Rounds are numbered from 1.
type WorkGenerator interface {
	Generate(round int) uint64
}

// FixedRate generates the same amount of work every round; nothing
// accumulates between rounds.
type FixedRate uint64

// Generate returns the fixed rate regardless of the round.
func (f FixedRate) Generate(int) uint64 {
	return uint64(f)
}

// GeneratorFunc adapts a plain function to WorkGenerator.
type GeneratorFunc func(round int) uint64

// Generate calls f(round).
func (f GeneratorFunc) Generate(round int) uint64 {
	return f(round)
}
