package analytics

import "time"

type EventType string

const (
	EventFindRequest EventType = "find_request"
	EventNoResult    EventType = "no_result"
)

// RequestEvent describes one tracked find request. It is what the collector
// publishes to the request-events topic.
type RequestEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Filter    string    `json:"filter"`
	Results   int       `json:"results"`
	LatencyMs int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// Stats is the current state of the tracker window.
type Stats struct {
	NoResultRequests int `json:"no_result_requests"`
	Requests         int `json:"requests"`
	Capacity         int `json:"capacity"`
}
