// Package config provides configuration loading and defaults for flowwatch.
package config

// DefaultConfigDir is the default location for flowwatch configuration.
const DefaultConfigDir = "~/.config/flowwatch"

// DefaultDBName is the filename for the SQLite database.
const DefaultDBName = "flowwatch.db"

// DefaultWindow holds the default aggregation window settings.
var DefaultWindow = Window{
	PeriodSeconds: 10,
	PointerNorm:   10,
}

// DefaultBuffers holds the default ring-buffer capacities.
var DefaultBuffers = Buffers{
	KeyTimes:       100,
	PointerSamples: 50,
	History:        30,
}

// DefaultAttention holds the default attention-estimator settings.
var DefaultAttention = Attention{
	Enabled:         false,
	SmoothingFactor: 0.15,
	NoiseScale:      0.02,
	Exponent:        3.0,
	TickSeconds:     1,
	ViewportWidth:   1920,
	ViewportHeight:  1080,
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 80,
}
