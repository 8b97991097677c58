package attempt

import "errors"

// ErrStorage marks the only fatal failure class of the attempt pipeline:
// the recording or the attempt record could not be persisted. Every other
// stage degrades to an empty value instead of failing the request.
var ErrStorage = errors.New("attempt: storage failure")
