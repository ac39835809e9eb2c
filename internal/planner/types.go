package planner

// Policy identifies one of the two encoding policies compared per file.
type Policy int

const (
	PolicyCBR Policy = iota // Fixed target bitrate (-b:a).
	PolicyVBR               // Quality-targeted variable bitrate (-q:a).
)

// Policies lists every policy in the order they are encoded and reported.
var Policies = []Policy{PolicyCBR, PolicyVBR}

// String returns the short upper-case label used in logs and reports.
func (p Policy) String() string {
	switch p {
	case PolicyCBR:
		return "CBR"
	case PolicyVBR:
		return "VBR"
	}
	return "unknown"
}

// Suffix returns the filename marker appended to the output stem. Discovery
// excludes files carrying these markers so outputs are never re-encoded.
func (p Policy) Suffix() string {
	switch p {
	case PolicyCBR:
		return "_cbr"
	case PolicyVBR:
		return "_vbr"
	}
	return ""
}

// Output is one planned encode of the input.
type Output struct {
	Policy Policy
	Path   string
	Args   []string // Rate-control arguments, e.g. ["-b:a", "320k"].
}

// FilePlan holds everything needed to encode one input under both policies.
// Outputs are ordered CBR then VBR.
type FilePlan struct {
	InputPath string
	Stem      string // Resolved output stem; differs from the input stem only after a collision.
	Outputs   []Output
}

// Output returns the planned output for policy p.
func (fp *FilePlan) Output(p Policy) (Output, bool) {
	for _, o := range fp.Outputs {
		if o.Policy == p {
			return o, true
		}
	}
	return Output{}, false
}
