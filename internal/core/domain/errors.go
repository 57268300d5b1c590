package domain

import "go.trai.ch/zerr"

var (
	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidCalibration is returned when the table calibration cannot drive the estimator.
	ErrInvalidCalibration = zerr.New("invalid table calibration")

	// ErrInvalidWorkerCount is returned when the configured worker count is below one.
	ErrInvalidWorkerCount = zerr.New("worker count must be at least 1")

	// ErrNoSpeeds is returned when no speeds are configured or requested.
	ErrNoSpeeds = zerr.New("no speeds specified")

	// ErrInvalidSpeed is returned when a requested speed is not positive.
	ErrInvalidSpeed = zerr.New("speed must be positive")

	// ErrPatternOpenFailed is returned when a pattern file cannot be opened.
	ErrPatternOpenFailed = zerr.New("failed to open pattern file")

	// ErrPatternReadFailed is returned when a pattern file cannot be read to the end.
	ErrPatternReadFailed = zerr.New("failed to read pattern file")

	// ErrPatternStatFailed is returned when a pattern file cannot be stat'ed.
	ErrPatternStatFailed = zerr.New("failed to stat pattern file")

	// ErrPatternDiscoveryFailed is returned when the patterns directory cannot be walked.
	ErrPatternDiscoveryFailed = zerr.New("failed to discover pattern files")

	// ErrCacheReadFailed is returned when the duration cache file cannot be read.
	ErrCacheReadFailed = zerr.New("failed to read duration cache")

	// ErrCacheDecodeFailed is returned when the duration cache file cannot be decoded.
	ErrCacheDecodeFailed = zerr.New("failed to decode duration cache")

	// ErrCacheEncodeFailed is returned when the duration cache cannot be encoded.
	ErrCacheEncodeFailed = zerr.New("failed to encode duration cache")

	// ErrCacheWriteFailed is returned when the duration cache file cannot be written.
	ErrCacheWriteFailed = zerr.New("failed to write duration cache")

	// ErrInvalidSpeedKey is returned when a persisted speed key is not numeric.
	ErrInvalidSpeedKey = zerr.New("invalid speed key in duration cache")

	// ErrRunFailed is returned when a calculation run terminates unexpectedly.
	ErrRunFailed = zerr.New("duration calculation run failed")

	// ErrRunStopped is reported when a calculation run ends early on request.
	ErrRunStopped = zerr.New("duration calculation stopped")

	// ErrSchedulerClosed is returned when work is submitted after shutdown.
	ErrSchedulerClosed = zerr.New("duration scheduler is shut down")

	// ErrWatcherFailed is returned when the pattern watcher cannot be started.
	ErrWatcherFailed = zerr.New("failed to start pattern watcher")
)
