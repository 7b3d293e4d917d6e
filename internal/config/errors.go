package config

import "errors"

// Configuration errors returned by Load and Validate. Callers match them
// with errors.Is.
var (
	// ErrConfigNotFound is returned when an explicitly named config file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrNoPages is returned when the fixed page list is empty.
	ErrNoPages = errors.New("no pages configured")

	// ErrNoTrailingURL is returned when the trailing page has no URL or file name.
	ErrNoTrailingURL = errors.New("trailing page needs both url and file")

	// ErrNoSelectors is returned when the content selector list is empty.
	ErrNoSelectors = errors.New("no content selectors configured")

	// ErrInvalidTimeout is returned when a timeout or delay is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrUnknownEngine is returned for an engine name other than chromedp, rod or static.
	ErrUnknownEngine = errors.New("unknown browser engine")

	// ErrNoOutputDir is returned when the output directory is empty.
	ErrNoOutputDir = errors.New("output directory must not be empty")
)
