package notification

import "time"

// Redis channel and Kafka message type for finished imports.
const (
	ImportsChannel     = "schedule:imports"
	TypeImportComplete = "import.completed"
)

// ImportCompleted is published once an import transaction has committed.
type ImportCompleted struct {
	Type       string    `json:"type"`
	RunID      string    `json:"run_id"`
	Source     string    `json:"source"`
	Years      []int     `json:"years"`
	EventCount int       `json:"event_count"`
	Created    int       `json:"created"`
	Updated    int       `json:"updated"`
	FinishedAt time.Time `json:"finished_at"`
}
