package domain

const (
	// DefaultConfigFile is the name of the configuration file looked up in the working directory.
	DefaultConfigFile = "patterneta.yaml"

	// DefaultCacheFile is the name of the persisted duration cache.
	DefaultCacheFile = "pattern_duration_cache.json"

	// DefaultPatternsDir is the directory scanned for pattern files.
	DefaultPatternsDir = "patterns"

	// DefaultPatternExtension is the file extension of pattern files.
	DefaultPatternExtension = ".thr"

	// DefaultSpeed is the speed computed when none is configured (mm/min).
	DefaultSpeed = 100

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)
