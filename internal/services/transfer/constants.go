package transfer

import "time"

const (
	// CommissionRate is charged on every transfer.
	CommissionRate = "0.015"

	// maxAttempts bounds the retry loop for transient lock contention.
	maxAttempts = 5

	// backoffBase is the first retry delay; each retry doubles it.
	backoffBase = 5 * time.Millisecond
)
