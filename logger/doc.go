// Package logger provides structured logging on top of zerolog.
//
// Loggers carry a service name and optional component tag, and accept
// field maps on every leveled call:
//
//	log := logger.New(&logger.Config{Level: "debug", Format: "json"}, "nfetch")
//	log.WithComponent("executor").Info("request completed", logger.Fields(
//	    logger.FieldMethod, "GET",
//	    logger.FieldStatusCode, 200,
//	))
//
// # Configuration
//
//	log:
//	  level: "info"
//	  format: "console"
//	  output: "stderr"
package logger
