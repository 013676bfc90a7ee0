// Package logging provides a simple leveled logging interface for the
// clipmerge service.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable, or
// forced to debug with DEBUG=true. [ForJob] returns a logger that tags every
// line with the merge job it belongs to.
package logging
