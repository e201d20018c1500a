package logger

import "go.uber.org/zap"

// Helpers de campos para mantener los nombres consistentes en todo el
// servicio. Si un campo se loguea en más de un lugar, va acá.

// ===== request =====

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }

// DurationMs loguea duraciones como entero en ms; más fácil de agregar en
// Loki/Grafana que el formato "1.234ms" de zap.Duration.
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }

// ===== identidad =====

func TenantID(v string) zap.Field { return zap.String("tenant_id", v) }
func UserID(v string) zap.Field   { return zap.String("user_id", v) }
func Role(v string) zap.Field     { return zap.String("role", v) }

// Email va solo en logs de operaciones administrativas, no en access logs.
func Email(v string) zap.Field { return zap.String("email", v) }

// ===== auditoría / soporte =====

func Action(v string) zap.Field   { return zap.String("action", v) }
func Resource(v string) zap.Field { return zap.String("resource", v) }

// ResourceID identifica el recurso afectado por una acción auditada.
func ResourceID(v string) zap.Field { return zap.String("resource_id", v) }

// GrantID identifica una solicitud de support access.
func GrantID(v string) zap.Field { return zap.String("grant_id", v) }

// TargetUserID es el usuario objetivo de una impersonación o grant.
func TargetUserID(v string) zap.Field { return zap.String("target_user_id", v) }

// ===== varios =====

func Component(v string) zap.Field  { return zap.String("component", v) }
func Op(v string) zap.Field         { return zap.String("op", v) }
func Key(v string) zap.Field        { return zap.String("key", v) }
func Err(err error) zap.Field       { return zap.Error(err) }
func Any(k string, v any) zap.Field { return zap.Any(k, v) }
