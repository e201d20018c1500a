// Package repository define los contratos de persistencia del dominio:
// usuarios, sesiones, perfiles de provider, solicitudes de support access,
// metadata de impersonación y audit log. Las implementaciones concretas
// (PostgreSQL vía pgx) viven en internal/store/pg; los tests usan fakes en
// memoria contra estas mismas interfaces.
//
// Todos los métodos reciben context.Context primero y reportan "no existe"
// con ErrNotFound, nunca con (nil, nil) — la única excepción documentada es
// FindActiveGrant, donde la ausencia de grant es un resultado normal.
package repository
