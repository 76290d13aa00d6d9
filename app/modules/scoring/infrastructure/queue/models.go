package scoringqueue

import "encoding/json"

// SnapshotJob recomputes and persists one year's standings.
type SnapshotJob struct {
	Year int `json:"year"`
}

// Kind returns the job type identifier for River
func (SnapshotJob) Kind() string { return "standings_snapshot" }

// JobInfo represents information about a snapshot job (for debugging/monitoring)
type JobInfo struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	Year        int    `json:"year"`
	State       string `json:"state"`
	ScheduledAt string `json:"scheduled_at"`
	Attempt     int    `json:"attempt"`
	MaxAttempts int    `json:"max_attempts"`
}

func decodeArgs(raw []byte, v *SnapshotJob) error {
	return json.Unmarshal(raw, v)
}
