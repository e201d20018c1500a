// Package logger expone un zap.Logger singleton con scoping por contexto.
//
// main llama Init una vez; el resto del código usa logger.From(ctx), que
// devuelve el logger enriquecido por los middlewares (request_id, usuario) o
// cae al singleton si el contexto no pasó por el stack HTTP. En dev el output
// es consola con colores, en prod JSON con stacktraces a partir de error.
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
//	defer logger.Sync()
//
//	logger.From(ctx).Info("support access approved", logger.GrantID(id))
package logger
