package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutWideWidth is the minimum width to show the home feed in two columns.
	LayoutWideWidth = 140
)

// Log display limits.
const (
	// LogTailLines is the number of log lines read per refresh.
	LogTailLines = 400
)

// Timing constants.
const (
	// ActionTimeout bounds a single user-triggered request.
	ActionTimeout = 20 * time.Second

	// DefaultUIInterval is the default UI refresh interval.
	DefaultUIInterval = time.Second
)

// chromeHeight is the rows taken by the header, command bar and toast line.
const chromeHeight = 3
