package automation

import "errors"

// ErrRateLimitExceeded is returned when creating an execution would exceed
// the flow's max replies per sender inside the cooldown window. Callers
// skip the flow and continue; it is never surfaced as a request failure.
var ErrRateLimitExceeded = errors.New("max replies per user reached")
