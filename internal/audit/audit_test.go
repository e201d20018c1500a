package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dropDatabas3/caregate/internal/domain/repository"
)

type captureRepo struct {
	entries []repository.AuditEntry
	err     error
}

func (c *captureRepo) Insert(_ context.Context, e *repository.AuditEntry) error {
	if c.err != nil {
		return c.err
	}
	c.entries = append(c.entries, *e)
	return nil
}

func (c *captureRepo) ListByTenant(_ context.Context, tenantID string, limit int) ([]repository.AuditEntry, error) {
	return c.entries, nil
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
}

func TestEmit_FillsIDAndTimestamp(t *testing.T) {
	repo := &captureRepo{}
	e := &Emitter{Repo: repo, Now: fixedNow}

	e.Emit(context.Background(), repository.AuditEntry{
		TenantID: "t1",
		UserID:   "u1",
		Action:   "support_access.create",
	})

	if len(repo.entries) != 1 {
		t.Fatalf("esperaba 1 entrada, got %d", len(repo.entries))
	}
	got := repo.entries[0]
	if got.ID == "" {
		t.Fatal("el emitter debería asignar ID")
	}
	if !got.Timestamp.Equal(fixedNow()) {
		t.Fatalf("timestamp = %v, want %v", got.Timestamp, fixedNow())
	}
}

func TestEmit_PresetIDIsKept(t *testing.T) {
	repo := &captureRepo{}
	e := &Emitter{Repo: repo, Now: fixedNow}

	e.Emit(context.Background(), repository.AuditEntry{ID: "fixed-id", Action: "x"})

	if repo.entries[0].ID != "fixed-id" {
		t.Fatalf("ID preexistente no debería pisarse: %s", repo.entries[0].ID)
	}
}

func TestEmit_TakesRequestMetaFromContext(t *testing.T) {
	repo := &captureRepo{}
	e := &Emitter{Repo: repo, Now: fixedNow}

	ctx := WithRequestMeta(context.Background(), RequestMeta{
		IPAddress: "203.0.113.7",
		UserAgent: "portal-web/2.1",
	})
	e.Emit(ctx, repository.AuditEntry{Action: "impersonation.start"})

	got := repo.entries[0]
	if got.IPAddress != "203.0.113.7" {
		t.Fatalf("ip = %q, esperaba la del contexto", got.IPAddress)
	}
	if got.UserAgent != "portal-web/2.1" {
		t.Fatalf("user agent = %q, esperaba el del contexto", got.UserAgent)
	}
}

func TestEmit_ExplicitMetaWinsOverContext(t *testing.T) {
	repo := &captureRepo{}
	e := &Emitter{Repo: repo, Now: fixedNow}

	ctx := WithRequestMeta(context.Background(), RequestMeta{IPAddress: "203.0.113.7"})
	e.Emit(ctx, repository.AuditEntry{Action: "x", IPAddress: "198.51.100.9"})

	if repo.entries[0].IPAddress != "198.51.100.9" {
		t.Fatalf("la IP explícita del caller no debería pisarse: %q", repo.entries[0].IPAddress)
	}
}

func TestEmit_SwallowsInsertFailure(t *testing.T) {
	repo := &captureRepo{err: errors.New("db caída")}
	e := &Emitter{Repo: repo, Now: fixedNow}

	// no hay error de retorno que chequear: la garantía es que no panickea
	// y no aborta la operación del caller
	e.Emit(context.Background(), repository.AuditEntry{Action: "x"})
}

func TestEmit_NilRepoOnlyLogs(t *testing.T) {
	e := &Emitter{Now: fixedNow}
	e.Emit(context.Background(), repository.AuditEntry{Action: "x"})
}
