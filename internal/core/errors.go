package core

import "errors"

// Sentinel errors returned by the service. Their messages double as the
// patterns MapError matches on, so keep the two in sync.
var (
	// ErrOracleUnavailable covers every oracle failure: transport errors,
	// timeouts, empty or unparsable answers. The cause is wrapped for logs.
	ErrOracleUnavailable = errors.New("classification unavailable")

	// ErrNoCode means the oracle answered but the answer held no digits.
	ErrNoCode = errors.New("oracle answer contains no code")

	ErrEmptyDescription = errors.New("description is required")
	ErrEmptyQuestion    = errors.New("question is required")

	ErrTooManyBatches = errors.New("too many concurrent batches, please try again later")
	ErrTooManyRows    = errors.New("too many rows in batch")

	ErrFileTooLarge    = errors.New("file too large")
	ErrInvalidFileType = errors.New("invalid file type: only .xlsx files are supported")
	ErrNoFile          = errors.New("no file provided")
	ErrEmptyWorkbook   = errors.New("empty workbook")
	ErrUnreadableFile  = errors.New("unreadable workbook")
)
