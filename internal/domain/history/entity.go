package history

import "time"

// RecordID identifier type
type RecordID string

// Record is the audit entry written for every generated report. The output
// directory stays authoritative; a record may outlive its file.
type Record struct {
	ID        RecordID  `json:"id"`
	Filename  string    `json:"filename"`
	Subject   string    `json:"subject"`
	Template  string    `json:"template"`
	Query     string    `json:"query,omitempty"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}
