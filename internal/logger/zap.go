package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LoggerConfig struct {
	Level  string
	Format string
	File   string
}

func ReadLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
		File:   os.Getenv("LOG_FILE"),
	}
}

func (c *LoggerConfig) FileEnabled() bool {
	return c.File != ""
}

func (c *LoggerConfig) level() zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.ToLower(c.Level))
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func (c *LoggerConfig) CreateLogger() (*zap.Logger, error) {
	cores := []zapcore.Core{}
	level := c.level()

	var stdoutEncoder zapcore.Encoder
	if strings.EqualFold(c.Format, "json") {
		stdoutEncoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		stdoutEncoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	cores = append(cores, zapcore.NewCore(stdoutEncoder, zapcore.AddSync(os.Stdout), level))

	// rotated JSON file for the log shipper
	if c.FileEnabled() {
		writer := &lumberjack.Logger{
			Filename:   c.File,
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
		}
		fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(writer), level))
	}

	combinedCore := zapcore.NewTee(cores...)
	logger := zap.New(combinedCore, zap.AddCaller())

	return logger, nil
}
