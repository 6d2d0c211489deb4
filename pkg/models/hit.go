package models

import "time"

// Hit records one redirect decision for troubleshooting and abuse
// analysis. Misses are recorded too: a burst of unmatched hostnames is
// the probing signal the negative cache exists to blunt.
type Hit struct {
	Hostname  string    `json:"hostname"`
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	Target    string    `json:"target,omitempty"`
	Matched   bool      `json:"matched"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// HostStat is an aggregate of hits per hostname within a time window.
type HostStat struct {
	Hostname string `json:"hostname"`
	Hits     int64  `json:"hits"`
	Matched  int64  `json:"matched"`
}
