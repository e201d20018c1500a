package audit

import "context"

// RequestMeta es el contexto de red del request que origina una acción
// auditada. El middleware HTTP lo deja en el contexto; Emit lo vuelca en la
// entrada para no obligar a cada servicio a acarrear IP y user agent.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

type metaKey struct{}

// WithRequestMeta inyecta la metadata de red en el contexto.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, metaKey{}, meta)
}

// MetaFrom extrae la metadata de red del contexto, o el cero si no hay
// (llamadas desde caregatectl, tests).
func MetaFrom(ctx context.Context) RequestMeta {
	if ctx == nil {
		return RequestMeta{}
	}
	if v, ok := ctx.Value(metaKey{}).(RequestMeta); ok {
		return v
	}
	return RequestMeta{}
}
