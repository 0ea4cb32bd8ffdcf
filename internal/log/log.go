package log

import (
	"os"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var base atomic.Pointer[zap.Logger]

func init() {
	base.Store(New(zapcore.InfoLevel, zapcore.AddSync(os.Stdout)))
}

// New builds the JSON-line logger used across the service.
func New(level zapcore.Level, out zapcore.WriteSyncer) *zap.Logger {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.MessageKey = "action"
	enc.EncodeTime = zapcore.RFC3339TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), out, level)
	return zap.New(core)
}

// Init replaces the process logger. When file is set, lines go to stdout
// and to the file.
func Init(level, file string) (func(), error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	out := zapcore.AddSync(os.Stdout)
	closeFn := func() {}
	if file != "" {
		f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return closeFn, err
		}
		out = zapcore.NewMultiWriteSyncer(out, zapcore.AddSync(f))
		closeFn = func() { _ = f.Close() }
	}
	l := New(lvl, out)
	base.Store(l)
	return func() {
		_ = l.Sync()
		closeFn()
	}, nil
}

// Use swaps the process logger and returns a func restoring the previous one.
func Use(l *zap.Logger) (restore func()) {
	prev := base.Swap(l)
	return func() { base.Store(prev) }
}

// L returns the process logger for code that runs outside a request.
func L() *zap.Logger { return base.Load() }

func write(level zapcore.Level, kind string, c *fiber.Ctx, action string, err error, fields map[string]any) {
	l := base.Load()
	ce := l.Check(level, action)
	if ce == nil {
		return
	}
	zf := make([]zap.Field, 0, 9)
	if kind != "" {
		zf = append(zf, zap.String("kind", kind))
	}
	if c != nil {
		zf = append(zf,
			zap.String("ip", c.IP()),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
		)
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			zf = append(zf, zap.String("req_id", rid))
		}
		if uid, ok := c.Locals("userID").(string); ok && uid != "" {
			zf = append(zf, zap.String("user_id", uid))
		}
	}
	if err != nil {
		zf = append(zf, zap.Error(err))
	}
	if len(fields) > 0 {
		zf = append(zf, zap.Any("fields", fields))
	}
	ce.Write(zf...)
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(zapcore.InfoLevel, "", c, action, nil, fields)
}

// Audit records an admin-visible state change.
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(zapcore.InfoLevel, "audit", c, action, nil, fields)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(zapcore.WarnLevel, "security", c, action, nil, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(zapcore.ErrorLevel, "", c, action, err, fields)
}
