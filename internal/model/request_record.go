package model

// RequestRecord is the audit line written for every handled correlation request.
// It carries request metadata only, never series values.
type RequestRecord struct {
	RequestID  string `json:"request_id"`
	ReceivedAt string `json:"received_at"`
	Top        int    `json:"top,omitempty"`
	StartDate  int    `json:"start_date,omitempty"`
	EndDate    int    `json:"end_date,omitempty"`
	Series     int    `json:"series"`
	Dates      int    `json:"dates"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}
