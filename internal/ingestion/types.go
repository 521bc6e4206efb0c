// Package ingestion defines the request, response and Kafka event types used
// to add and remove documents.
package ingestion

import "time"

type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
)

// Response statuses.
const (
	StatusIndexed = "indexed"
	StatusQueued  = "queued"
	StatusRemoved = "removed"
	StatusAbsent  = "absent"
)

// DocumentRequest is the JSON body accepted by POST /api/v1/documents. ID is
// a pointer so a missing id can be told apart from id 0.
type DocumentRequest struct {
	ID      *int   `json:"id"`
	Text    string `json:"text"`
	Status  string `json:"status"`
	Ratings []int  `json:"ratings"`
}

// DocumentResponse reports what happened to a document mutation.
type DocumentResponse struct {
	ID     int    `json:"id"`
	Status string `json:"status"`
}

// DocumentEvent is the Kafka payload on the documents topic. Text, Status
// and Ratings are only meaningful for OpAdd.
type DocumentEvent struct {
	Op        Op        `json:"op"`
	ID        int       `json:"id"`
	Text      string    `json:"text,omitempty"`
	Status    string    `json:"status,omitempty"`
	Ratings   []int     `json:"ratings,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
