package models

// ScrapeResult tallies the outcome of one save batch. Immutable once returned;
// a failed run reports a zero-filled result rather than omitting it.
type ScrapeResult struct {
	Saved   int `json:"saved"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}

// RunOutcome wraps one pipeline run. Fetch failures and empty fetches are
// reported here as Success=false, never as a raised error.
type RunOutcome struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Result  ScrapeResult `json:"result"`
}

// ExpireResult reports how many records a maintenance sweep deactivated.
type ExpireResult struct {
	ModifiedCount int `json:"modified_count"`
}
