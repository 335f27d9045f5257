package downloader

import "errors"

var (
	// ErrInvalidRangeFormat is returned when a range is not "<start>-<end>".
	ErrInvalidRangeFormat = errors.New("invalid episode range format")
	// ErrRangeOutOfBounds is returned when start > end or end is past the last episode.
	ErrRangeOutOfBounds = errors.New("episode range out of bounds")

	ErrEmptyBatch    = errors.New("batch has no episodes")
	ErrDirectory     = errors.New("cannot create download directory")
	ErrProgressStyle = errors.New("invalid progress display configuration")

	// ErrSpawn and ErrExitFailure stay inside Outcome.Err; they never fail a batch.
	ErrSpawn       = errors.New("downloader could not be started")
	ErrExitFailure = errors.New("downloader exited with failure")
	ErrCanceled    = errors.New("download canceled")

	ErrToolMissing = errors.New("downloader binary not found")
	ErrToolFailed  = errors.New("downloader command failed")
)
