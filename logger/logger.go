// Package logger configures the process-wide zap logger.
//
// Production gets JSON to stdout, everything else gets the colored
// development console. The logger is installed globally so call sites
// can use zap.S() / zap.L() without plumbing.
package logger

import (
	"go.uber.org/zap"
)

func Init(environment string) (*zap.Logger, error) {
	var log *zap.Logger
	var err error

	if environment == "production" {
		cfg := zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stdout"}
		log, err = cfg.Build()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}

	zap.ReplaceGlobals(log)
	return log, nil
}
