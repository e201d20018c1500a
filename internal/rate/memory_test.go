package rate

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	// ventana larga para que el test no cruce el borde
	l := NewMemoryLimiter(3, time.Hour)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res, err := l.Allow(ctx, "cliente-a")
		if err != nil {
			t.Fatal(err)
		}
		if !res.Allowed {
			t.Fatalf("hit %d debería pasar", i)
		}
		if res.CurrentHits != int64(i) {
			t.Fatalf("hits = %d, want %d", res.CurrentHits, i)
		}
		if want := int64(3 - i); res.Remaining != want {
			t.Fatalf("remaining = %d, want %d", res.Remaining, want)
		}
	}

	res, err := l.Allow(ctx, "cliente-a")
	if err != nil {
		t.Fatal(err)
	}
	if res.Allowed {
		t.Fatal("hit 4 debería rechazarse")
	}
	if res.Remaining != 0 {
		t.Fatalf("remaining = %d, want 0", res.Remaining)
	}
	if res.RetryAfter <= 0 {
		t.Fatal("un rechazo debería traer RetryAfter")
	}
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	l := NewMemoryLimiter(1, time.Hour)
	ctx := context.Background()

	if res, _ := l.Allow(ctx, "cliente-a"); !res.Allowed {
		t.Fatal("primer hit de a debería pasar")
	}
	if res, _ := l.Allow(ctx, "cliente-a"); res.Allowed {
		t.Fatal("segundo hit de a debería rechazarse")
	}
	if res, _ := l.Allow(ctx, "cliente-b"); !res.Allowed {
		t.Fatal("el límite de a no debería afectar a b")
	}
}

func TestMemoryLimiter_WindowKeyRotates(t *testing.T) {
	// con ventana de 1ns cada Allow cae en una ventana nueva: nunca acumula
	l := NewMemoryLimiter(1, time.Nanosecond)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		res, err := l.Allow(ctx, "cliente-a")
		if err != nil {
			t.Fatal(err)
		}
		if !res.Allowed {
			t.Fatalf("iteración %d: ventana nueva debería arrancar en 1", i)
		}
		time.Sleep(time.Microsecond)
	}
}
