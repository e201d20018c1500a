package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	once     sync.Once
	instance *zap.Logger
)

// Init inicializa el logger singleton. Idempotente: solo la primera llamada
// tiene efecto. Se llama al arranque, en main.
func Init(cfg Config) {
	once.Do(func() {
		instance = build(cfg)
	})
}

// L retorna el logger singleton. Si Init no fue llamado todavía, arma uno de
// dev con defaults (pasa en tests de paquetes sueltos).
func L() *zap.Logger {
	if instance == nil {
		Init(Config{Env: "dev", Level: "info", ServiceName: "caregate"})
	}
	return instance
}

// With retorna un logger con campos persistentes adicionales.
func With(fields ...zap.Field) *zap.Logger {
	return L().With(fields...)
}

// Sync flushea buffers pendientes. Va en defer en main.
func Sync() error {
	if instance != nil {
		return instance.Sync()
	}
	return nil
}
