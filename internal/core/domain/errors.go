package domain

import "errors"

// ErrRecordTooLarge is returned when a full chunk holds no line delimiter,
// meaning a single record does not fit into the configured chunk size.
// The input is treated as corrupted and the run is aborted.
var ErrRecordTooLarge = errors.New("record exceeds chunk size")
