package config

// Configfile represents the structure of the patterneta.yaml configuration file.
type Configfile struct {
	PatternsDir   string   `yaml:"patterns_dir"`
	CacheFile     string   `yaml:"cache_file"`
	Extension     string   `yaml:"extension"`
	DefaultSpeeds []int    `yaml:"default_speeds"`
	Workers       *int     `yaml:"workers"`
	Watch         bool     `yaml:"watch"`
	Table         TableDTO `yaml:"table"`
}

// TableDTO represents the table calibration in the configuration.
type TableDTO struct {
	Type          string   `yaml:"type"`
	XStepsPerUnit *float64 `yaml:"x_steps_per_mm"`
	YStepsPerUnit *float64 `yaml:"y_steps_per_mm"`
	GearRatio     *float64 `yaml:"gear_ratio"`
}
