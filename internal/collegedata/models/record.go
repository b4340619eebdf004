// Package models holds the per-user college document shape.
package models

// Record is the single document kept per phone number. The phone number is
// the document key and is never stored inside the document body itself.
type Record struct {
	Phone         string              `json:"-"`
	CollegeOrder  []string            `json:"collegeOrder"`
	Notes         map[string][]string `json:"notes"`
	LikedColleges []string            `json:"likedColleges"`
}

// Empty returns the default record shape for a phone number with no stored
// data. Not-found is indistinguishable from empty-but-existing, so this is
// also what callers see before their first save.
func Empty(phone string) *Record {
	return &Record{
		Phone:         phone,
		CollegeOrder:  []string{},
		Notes:         map[string][]string{},
		LikedColleges: []string{},
	}
}

// NormalizeOrder coerces a possibly-nil ranking list into a non-nil slice so
// it always serializes as a JSON array.
func NormalizeOrder(order []string) []string {
	if order == nil {
		return []string{}
	}
	return order
}

// NormalizeNotes coerces a possibly-nil notes mapping into a non-nil map with
// non-nil value slices. Missing keys are treated as empty sequences, never as
// scalars or absent values.
func NormalizeNotes(notes map[string][]string) map[string][]string {
	if notes == nil {
		return map[string][]string{}
	}
	for college, facts := range notes {
		if facts == nil {
			notes[college] = []string{}
		}
	}
	return notes
}

// Normalize applies the field-level coercions in place and returns the record
// for chaining.
func (r *Record) Normalize() *Record {
	r.CollegeOrder = NormalizeOrder(r.CollegeOrder)
	r.Notes = NormalizeNotes(r.Notes)
	r.LikedColleges = NormalizeOrder(r.LikedColleges)
	return r
}

// Clone returns a deep copy so in-memory stores never hand out aliased state.
func (r *Record) Clone() *Record {
	clone := &Record{
		Phone:         r.Phone,
		CollegeOrder:  append([]string{}, r.CollegeOrder...),
		Notes:         make(map[string][]string, len(r.Notes)),
		LikedColleges: append([]string{}, r.LikedColleges...),
	}
	for college, facts := range r.Notes {
		clone.Notes[college] = append([]string{}, facts...)
	}
	return clone
}
