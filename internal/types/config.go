package types

import (
	ierr "github.com/guardpost/console/internal/errors"
	"github.com/samber/lo"
)

type RunMode string

const (
	// ModeLocal runs the console API against a local backend with debug defaults
	ModeLocal RunMode = "local"
	// ModeAPI is the mode for running the console API server
	ModeAPI RunMode = "api"
	// ModeAWSLambdaAPI serves the console API from an AWS Lambda behind API Gateway
	ModeAWSLambdaAPI RunMode = "aws_lambda_api"
)

func (m RunMode) Validate() error {
	allowed := []RunMode{ModeLocal, ModeAPI, ModeAWSLambdaAPI}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid deployment mode").
			WithHintf("Deployment mode must be one of %v", allowed).
			Mark(ierr.ErrValidation)
	}
	return nil
}

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

func (l LogLevel) Validate() error {
	allowed := []LogLevel{LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError}
	if !lo.Contains(allowed, l) {
		return ierr.NewError("invalid log level").
			WithHintf("Log level must be one of %v", allowed).
			Mark(ierr.ErrValidation)
	}
	return nil
}
