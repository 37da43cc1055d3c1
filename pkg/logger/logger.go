// Package logger constructs the zap.SugaredLogger instances threaded
// through every component's Config struct.
package logger

import "go.uber.org/zap"

// New builds a production zap logger for service, falling back to a
// no-op logger if zap's own construction fails (it only ever does on an
// unwritable stderr, which logging about would be pointless anyway).
func New(service string) *zap.SugaredLogger {
	base, err := zap.NewProduction()
	if err != nil {
		base = zap.NewNop()
	}
	return base.Sugar().With("service", service)
}
