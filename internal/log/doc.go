// Package log provides the slog setup for riskscan.
//
// SecureHandler wraps any slog.Handler and:
//   - masks credential attributes such as the classifier token or an
//     Authorization header, by key name and by value shape
//   - clips long string values so a stray document text or sentence
//     does not flood the log
//
// Usage:
//
//	logger := log.NewLogger(os.Stderr, verbose, jsonFormat)
//	slog.SetDefault(logger)
package log
