// Package roster normalizes raw roster rows into canonical Student
// records and an immutable RosterIndex shared by the pipeline stages.
package roster

// Kind distinguishes roster-backed students from placeholders
// synthesized for identities referenced only by submissions.
type Kind int

const (
	Known Kind = iota
	Placeholder
)

// Student is one production-team member. Immutable once built.
type Student struct {
	ID    string
	Name  string
	Email string
	// Units holds zero, one, or two membership tags from the closed unit set.
	Units  []string
	Kind   Kind
	Status string
}

func (s Student) IsPlaceholder() bool { return s.Kind == Placeholder }

// PrimaryUnit is the first unit tag, used as the fallback unit context
// for submissions whose explicit context is unknown.
func (s Student) PrimaryUnit() string {
	if len(s.Units) == 0 {
		return ""
	}
	return s.Units[0]
}

// InUnit reports membership of the given normalized unit tag.
func (s Student) InUnit(unit string) bool {
	for _, u := range s.Units {
		if u == unit {
			return true
		}
	}
	return false
}
