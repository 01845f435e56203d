// Package temporal bridges the Temporal SDK's logging interface onto zap.
package temporal

import (
	"fmt"
	"reflect"

	"go.temporal.io/sdk/log"
	"go.uber.org/zap"
)

// ZapAdapter exposes a zap logger through Temporal's keyval logger
// interface.
type ZapAdapter struct {
	logger *zap.Logger
}

func NewZapAdapter(logger *zap.Logger) log.Logger {
	return &ZapAdapter{logger: logger}
}

func (z *ZapAdapter) Debug(msg string, keyvals ...interface{}) {
	z.logger.Debug(msg, toFields(keyvals)...)
}

func (z *ZapAdapter) Info(msg string, keyvals ...interface{}) {
	z.logger.Info(msg, toFields(keyvals)...)
}

func (z *ZapAdapter) Warn(msg string, keyvals ...interface{}) {
	z.logger.Warn(msg, toFields(keyvals)...)
}

func (z *ZapAdapter) Error(msg string, keyvals ...interface{}) {
	z.logger.Error(msg, toFields(keyvals)...)
}

// With is required by the SDK for contextual child loggers.
func (z *ZapAdapter) With(keyvals ...interface{}) log.Logger {
	return &ZapAdapter{logger: z.logger.With(toFields(keyvals)...)}
}

func toFields(keyvals []interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, field(key, keyvals[i+1]))
	}
	return fields
}

// field guards zap.Any against values it cannot serialize; the SDK passes
// arbitrary keyvals through here.
func field(key string, val interface{}) (f zap.Field) {
	defer func() {
		if r := recover(); r != nil {
			f = zap.String(key, fmt.Sprintf("<unserializable: %v>", r))
		}
	}()

	if val == nil {
		return zap.String(key, "<nil>")
	}
	switch reflect.ValueOf(val).Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Invalid:
		return zap.String(key, fmt.Sprintf("<%s>", reflect.ValueOf(val).Kind()))
	default:
		return zap.Any(key, val)
	}
}
