// Package config provides configuration loading and validation for flowkit
// services.
//
// It uses Viper to load configuration from a config.yml file, a .env file
// (via godotenv) and the process environment, in that order of precedence
// from lowest to highest.
//
// # Usage
//
//	var cfg config.ServiceConfig
//	if err := config.Load("media-ingest", &cfg); err != nil {
//	    return err
//	}
//	logger.Init(&cfg.Logging)
//	err := pipeline.Run(ctx, stages, pipeline.WithConfig(cfg.Pipeline))
//
// Environment variables map to nested keys by underscores, optionally
// prefixed with the service name: PIPELINE_TRACE_EVENTS=true and
// MEDIA_INGEST_PIPELINE_TRACE_EVENTS=true both set pipeline.trace_events,
// the prefixed form winning.
package config
