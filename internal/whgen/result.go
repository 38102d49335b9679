package whgen

// Artifact is one generated file. The suffix is appended to the unit name
// to form the file's base name; the empty suffix is the primary file.
type Artifact struct {
	Suffix  string
	Content string
}

// Result is the output of generating one unit: either a Single file or
// Multiple sibling files.
type Result interface {
	result() // marker method to close the set of implementations
	// Files returns the artifacts in write order.
	Files() []Artifact
	// PrimaryContent returns the content of the artifact with the empty
	// suffix.
	PrimaryContent() string
}

// Single is a one-file result.
type Single struct {
	Content string
}

func (Single) result() {}

func (s Single) Files() []Artifact { return []Artifact{{Content: s.Content}} }

func (s Single) PrimaryContent() string { return s.Content }

// Multiple is a result of several sibling files, primary first.
type Multiple struct {
	Artifacts []Artifact
}

func (Multiple) result() {}

func (m Multiple) Files() []Artifact {
	out := make([]Artifact, len(m.Artifacts))
	copy(out, m.Artifacts)
	return out
}

func (m Multiple) PrimaryContent() string {
	for _, a := range m.Artifacts {
		if a.Suffix == "" {
			return a.Content
		}
	}
	if len(m.Artifacts) > 0 {
		return m.Artifacts[0].Content
	}
	return ""
}

// IsMultiple reports whether r holds more than one artifact.
func IsMultiple(r Result) bool {
	_, ok := r.(Multiple)
	return ok
}
