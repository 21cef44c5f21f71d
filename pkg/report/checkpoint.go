package report

// Checkpoint is a named progress milestone in the generation sequence.
type Checkpoint struct {
	// Percent is the progress percentage at this milestone.
	Percent int `json:"percent"`

	// Label describes the phase entered at this milestone.
	Label string `json:"label"`
}

// checkpoints is the fixed, ordered sequence every generation walks.
// No checkpoint is ever skipped or reordered; the last entry is always
// exactly 100 and the record commits only after it is emitted.
var checkpoints = []Checkpoint{
	{0, "Initializing report engine"},
	{10, "Loading scan results"},
	{25, "Analyzing findings"},
	{40, "Building report sections"},
	{60, "Applying theme"},
	{80, "Rendering artifact"},
	{95, "Finalizing"},
	{100, "Complete"},
}

// Checkpoints returns a copy of the generation checkpoint sequence.
func Checkpoints() []Checkpoint {
	out := make([]Checkpoint, len(checkpoints))
	copy(out, checkpoints)
	return out
}

// ProgressFunc observes checkpoint transitions during generation.
// Called synchronously from the generating goroutine; keep it cheap.
type ProgressFunc func(Checkpoint)
