// Copyright (c) Microsoft Corporation. All rights reserved.

package testutil

import (
	"flag"
	"os"
	"testing"

	"github.com/go-logr/logr"
	"go.uber.org/zap/zapcore"

	"github.com/microsoft/covdbg/pkg/logger"
)

// Overrides the log level used by tests, e.g. COVDBG_TEST_LOG_LEVEL=debug
const COVDBG_TEST_LOG_LEVEL = "COVDBG_TEST_LOG_LEVEL"

func NewLogForTesting(name string) logr.Logger {
	log := logger.New(name)
	log.SetLevel(zapcore.ErrorLevel)
	if !flag.Parsed() {
		flag.Parse() // Needed to test if verbose flag was present.
	}
	if testing.Verbose() {
		log.SetLevel(zapcore.DebugLevel)
	}
	if levelStr, found := os.LookupEnv(COVDBG_TEST_LOG_LEVEL); found {
		if level, err := logger.StringToLevel(levelStr, zapcore.ErrorLevel); err == nil {
			log.SetLevel(level)
		}
	}
	return log.Logger.WithValues("test", true)
}
