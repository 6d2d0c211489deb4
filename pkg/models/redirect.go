package models

import "time"

// RedirectEntry is one row in the durable store: a source hostname and
// the target base URL its traffic is sent to. Hostname is always the
// canonical lowercased form; it is the sole lookup key.
type RedirectEntry struct {
	Hostname  string    `json:"hostname"`
	TargetURL string    `json:"target_url"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Decision is the outcome of resolving one inbound request.
type Decision struct {
	// Matched reports whether a redirect applies.
	Matched bool `json:"matched"`
	// Location is the fully composed absolute URL to redirect to.
	// Empty when Matched is false.
	Location string `json:"location,omitempty"`
}

// NoMatch is the decision returned for every failure path: unknown
// hostname, malformed request, bad stored row, or store outage.
var NoMatch = Decision{}
