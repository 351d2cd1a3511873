package ports

import "time"

type Status struct {
	State     string    `json:"state"`
	Session   string    `json:"session,omitempty"`
	Channel   string    `json:"channel"`
	StartedAt time.Time `json:"started_at"`
	Timers    int       `json:"timers"`
}

type StatusPort interface {
	Status() Status
}
