package entity

import "time"

// FetchLog records one attempt against a provider
type FetchLog struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	Provider   string    `bson:"provider" json:"provider"`
	Capability string    `bson:"capability" json:"capability"`
	Airport    string    `bson:"airport,omitempty" json:"airport,omitempty"`
	Outcome    string    `bson:"outcome" json:"outcome"`
	Records    int       `bson:"records" json:"records"`
	Pages      int       `bson:"pages" json:"pages"`
	DurationMs int64     `bson:"durationMs" json:"duration_ms"`
	Error      string    `bson:"error,omitempty" json:"error,omitempty"`
	FetchedAt  time.Time `bson:"fetchedAt" json:"fetched_at"`
}

// SchedulesIngested is published after provider data has been persisted
type SchedulesIngested struct {
	Provider   string    `json:"provider"`
	Direction  string    `json:"direction"`
	Airports   []string  `json:"airports"`
	FlightIDs  []string  `json:"flight_ids"`
	IngestedAt time.Time `json:"ingested_at"`
}
