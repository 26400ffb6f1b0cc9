// Package logger provides structured logging using zerolog.
//
// It supports JSON and console formats, log level configuration,
// component-scoped loggers with structured fields, and an optional
// rotating log file that receives the same events as the terminal.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "console"
//	  output: "stderr"
//	  file: "bot.log"
//	  max_size: 1
//	  compress: true
//	  truncate: true
//
// # Usage
//
//	log, err := logger.Init(&cfg.Logging, "voicescribe")
//	log = log.WithComponent("convertio")
//	log.Info("job submitted", map[string]interface{}{logger.FieldJobID: id})
//
// WithContext adds the run id, user id and active trace id carried by a
// context.
package logger
