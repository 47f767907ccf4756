package main

import (
	"github.com/yardops/compliance-worker/internal/config"
	"github.com/yardops/compliance-worker/internal/logging"
	"go.uber.org/zap"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.NewLogger(cfg.ServiceName)
}
