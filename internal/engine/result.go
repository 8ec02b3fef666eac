package engine

// Result is the outcome a handler reports for one event.
type Result string

const (
	// ResultSuccess: worked as requested, consumed a remote request.
	ResultSuccess Result = "success"
	// ResultFail: something went wrong; completion is not broadcast.
	ResultFail Result = "fail"
	// ResultSkip: request discarded (repetitive or wrong state); no
	// notification, no pacing delay.
	ResultSkip Result = "skip"
	// ResultInstant: fulfilled without a remote request; notify but do
	// not pace.
	ResultInstant Result = "instant"
)
