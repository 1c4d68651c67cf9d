package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Database drivers supported by this application.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// RootLogger is the process-wide logger that all other loggers are derived
// from. Level is taken from CR_LOG_LEVEL at startup.
var RootLogger = newRootLogger()

// NodeID uniquely identifies this process instance in logs and announcements.
var NodeID = RandomID()

// logger is the logger used within the config package itself.
var logger = RootLogger

func newRootLogger() *zap.Logger {
	lvl := zapcore.InfoLevel
	if s := os.Getenv(CR_LOG_LEVEL); len(s) > 0 {
		// Unrecognized values leave the level at info.
		lvl.UnmarshalText([]byte(s))
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// RandomID produces a short random hex identifier, used for session ids and
// for identifying this node.
func RandomID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(b)
}

// GetEnvOrDefault returns the value of the environment variable if set,
// otherwise the supplied default.
func GetEnvOrDefault(name, defaultValue string) string {
	envVal := os.Getenv(name)
	if len(envVal) == 0 {
		return defaultValue
	}
	return envVal
}
