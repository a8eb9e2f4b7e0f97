// Package log provides logging for dxmanifest built on the standard slog
// package.
//
// Phenotype data is clinical data. The SecureHandler masks attribute values
// whose key names a phenotype field (diagnosis, dx, label, age, sex, ...)
// so that logs, which are routinely pasted into issues and chat, never carry
// a subject's diagnosis. Identifiers, file names and counts are logged as is.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("row dropped", "subject", 1019436, "diagnosis", "pending")
//	// subject=1019436 diagnosis=***REDACTED***
//
//	slog.SetDefault(logger)
package log
