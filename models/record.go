package models

// Failure kinds recorded in the per-day failure log.
const (
	FailureGatewayTimeout = "gateway_timeout"
	FailureGatewayError   = "gateway_error"
	FailureParseError     = "parse_error"
)

// CleanedRecord is a validated structured extraction derived from one
// raw row. Problem and Solution are always non-empty when a record is
// emitted; ExtraHelp defaults to "" when the model omitted it.
type CleanedRecord struct {
	PostID    string `json:"post_id"`
	Problem   string `json:"problem"`
	Solution  string `json:"solution"`
	ExtraHelp string `json:"extra_help"`
}

// RowFailure describes one row the cleaner could not process. Row is
// the index into the raw dataset, preserved regardless of processing
// order.
type RowFailure struct {
	Row    int    `json:"row"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// RowOutcome is the explicit result of cleaning a single row: exactly
// one of Record, Failure, or Negative is meaningful. A Negative outcome
// is the model deliberately classifying the row as unusable
// (is_valid=false); it is neither a record nor a failure.
type RowOutcome struct {
	Record   *CleanedRecord
	Failure  *RowFailure
	Negative bool
}
