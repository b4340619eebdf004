package handler

import (
	"collegedesk/internal/collegedata/models"
)

// FetchResponse is the HTTP response for GET /college-data. The error field
// carries store failures inside an otherwise-default body; see HandleFetch.
type FetchResponse struct {
	CollegeOrder  []string            `json:"collegeOrder"`
	Notes         map[string][]string `json:"notes"`
	LikedColleges []string            `json:"likedColleges"`
	Error         string              `json:"error,omitempty"`
}

// SaveResponse is the HTTP response for a successful POST /college-data.
type SaveResponse struct {
	Message string `json:"message"`
}

// FromRecord converts a domain record to an HTTP response.
func FromRecord(record *models.Record) *FetchResponse {
	return &FetchResponse{
		CollegeOrder:  record.CollegeOrder,
		Notes:         record.Notes,
		LikedColleges: record.LikedColleges,
	}
}

// EmptyWithError is the fetch shape returned when the store is unreachable:
// the default empty document plus a reported (not thrown) error message.
func EmptyWithError(message string) *FetchResponse {
	return &FetchResponse{
		CollegeOrder:  []string{},
		Notes:         map[string][]string{},
		LikedColleges: []string{},
		Error:         message,
	}
}
