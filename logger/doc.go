// Package logger provides structured logging for flowkit using zerolog.
//
// It supports JSON and console output, log level configuration, and
// component-scoped loggers with structured fields. Pipelines log through
// the "pipeline" component, progress lines through "progress".
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("pipeline")
//	log.Info("pipeline settled", logger.Fields(logger.FieldPipelineID, id))
package logger
