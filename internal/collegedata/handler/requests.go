package handler

import (
	"encoding/json"
	"strings"

	dErrors "collegedesk/pkg/domain-errors"
)

// SaveRequest is the HTTP request body for POST /college-data.
//
// collegeOrder, notes and likedColleges decode through json.RawMessage on
// purpose: clients historically sent wrong-typed values for these fields,
// and the contract is to normalize them to empty values rather than reject
// the save. Only a missing phone fails validation.
type SaveRequest struct {
	Phone         string          `json:"phone"`
	CollegeOrder  json.RawMessage `json:"collegeOrder"`
	Notes         json.RawMessage `json:"notes"`
	LikedColleges json.RawMessage `json:"likedColleges"`

	// Parsed values (populated by Validate)
	parsedOrder []string
	parsedNotes map[string][]string
	parsedLiked []string
}

// Validate validates and normalizes the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *SaveRequest) Validate() error {
	r.Phone = strings.TrimSpace(r.Phone)
	if r.Phone == "" {
		return dErrors.New(dErrors.CodeValidation, "Phone number is required")
	}

	r.parsedOrder = coerceStringList(r.CollegeOrder)
	r.parsedNotes = coerceNotes(r.Notes)
	r.parsedLiked = coerceStringList(r.LikedColleges)
	return nil
}

// ParsedOrder returns the normalized ranking list.
func (r *SaveRequest) ParsedOrder() []string { return r.parsedOrder }

// ParsedNotes returns the normalized notes mapping.
func (r *SaveRequest) ParsedNotes() map[string][]string { return r.parsedNotes }

// ParsedLiked returns the normalized liked-colleges list.
func (r *SaveRequest) ParsedLiked() []string { return r.parsedLiked }

// coerceStringList decodes a JSON array of strings, normalizing absent,
// null, or wrong-typed values to an empty list.
func coerceStringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil || list == nil {
		return []string{}
	}
	return list
}

// coerceNotes decodes a JSON object mapping college IDs to string arrays,
// normalizing absent, null, or wrong-typed values to an empty mapping.
func coerceNotes(raw json.RawMessage) map[string][]string {
	if len(raw) == 0 {
		return map[string][]string{}
	}
	var notes map[string][]string
	if err := json.Unmarshal(raw, &notes); err != nil || notes == nil {
		return map[string][]string{}
	}
	for college, facts := range notes {
		if facts == nil {
			notes[college] = []string{}
		}
	}
	return notes
}
