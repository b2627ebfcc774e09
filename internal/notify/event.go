// Package notify announces converted pages on a NATS subject.
package notify

import "time"

// PageEvent is published for every page a run wrote.
type PageEvent struct {
	RunID       string    `json:"run_id"`
	Page        string    `json:"page"`
	Version     int       `json:"version"`
	Author      string    `json:"author,omitempty"`
	Path        string    `json:"path"`                  // written file, relative to the output directory
	Fingerprint string    `json:"fingerprint,omitempty"` // set when front matter is enabled
	Warnings    int       `json:"warnings"`
	Modified    time.Time `json:"modified"`
	Timestamp   time.Time `json:"timestamp"`
}

// RunEvent summarizes a finished run.
type RunEvent struct {
	RunID     string    `json:"run_id"`
	Pages     int       `json:"pages"`
	Failed    int       `json:"failed"`
	Warnings  int       `json:"warnings"`
	Commit    string    `json:"commit,omitempty"`
	Started   time.Time `json:"started"`
	Timestamp time.Time `json:"timestamp"`
}
