package roster

import (
	"errors"
	"sort"

	"github.com/crewlab/peereval/internal/tabular"
)

// ErrNoUsableRoster aborts the run: a roster source with zero usable
// rows cannot anchor normalization.
var ErrNoUsableRoster = errors.New("roster: no usable rows")

// RosterIndex resolves student ids to canonical Student records. It is
// built once from roster rows, extended only by placeholder synthesis
// during submission normalization, and read-only afterwards.
type RosterIndex struct {
	byID map[string]Student
}

// BuildIndex normalizes roster rows into an index. A row is kept only
// when its id matches the canonical pattern and its status is active.
func BuildIndex(rows []tabular.RosterRow) (*RosterIndex, error) {
	idx := &RosterIndex{byID: make(map[string]Student, len(rows))}
	for _, row := range rows {
		id := NormalizeID(row.StudentID)
		if !IsCanonicalID(id) {
			continue
		}
		if !IsActiveStatus(row.Status) {
			continue
		}
		var units []string
		for _, raw := range []string{row.Unit1, row.Unit2} {
			if u, ok := NormalizeUnit(raw); ok {
				units = append(units, u)
			}
		}
		email := NormalizeEmail(row.Email)
		if !IsValidEmail(email) {
			email = DeriveEmail(id)
		}
		idx.byID[id] = Student{
			ID:     id,
			Name:   row.StudentName,
			Email:  email,
			Units:  units,
			Kind:   Known,
			Status: row.Status,
		}
	}
	if len(idx.byID) == 0 {
		return nil, ErrNoUsableRoster
	}
	return idx, nil
}

// Lookup returns the student for a normalized id.
func (x *RosterIndex) Lookup(id string) (Student, bool) {
	s, ok := x.byID[id]
	return s, ok
}

// EnsurePlaceholder returns the student for id, synthesizing a
// placeholder record when the roster has no entry. The id is preserved
// so scores keep flowing to the evaluated identity.
func (x *RosterIndex) EnsurePlaceholder(id, name string) Student {
	if s, ok := x.byID[id]; ok {
		return s
	}
	s := Student{ID: id, Name: name, Email: PlaceholderEmail, Kind: Placeholder}
	x.byID[id] = s
	return s
}

// Students returns all records sorted by id.
func (x *RosterIndex) Students() []Student {
	out := make([]Student, 0, len(x.byID))
	for _, s := range x.byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UnitMembers returns the known (non-placeholder) members of a unit,
// sorted by id.
func (x *RosterIndex) UnitMembers(unit string) []Student {
	var out []Student
	for _, s := range x.byID {
		if s.Kind == Known && s.InUnit(unit) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len reports the number of indexed students, placeholders included.
func (x *RosterIndex) Len() int { return len(x.byID) }
