package password

import (
	"strings"
	"testing"
)

func TestHashVerify_Roundtrip(t *testing.T) {
	phc, err := Hash(Default, "correcthorsebattery")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(phc, "$argon2id$v=19$") {
		t.Fatalf("formato PHC inesperado: %s", phc)
	}
	if !Verify("correcthorsebattery", phc) {
		t.Fatal("el password correcto debería verificar")
	}
	if Verify("otracosa", phc) {
		t.Fatal("un password incorrecto no debería verificar")
	}
}

func TestHash_EmptyPassword(t *testing.T) {
	if _, err := Hash(Default, ""); err == nil {
		t.Fatal("password vacío debería fallar")
	}
}

func TestHash_SaltedPerCall(t *testing.T) {
	a, _ := Hash(Default, "mismo-password")
	b, _ := Hash(Default, "mismo-password")
	if a == b {
		t.Fatal("dos hashes del mismo password deberían diferir (salt)")
	}
}

func TestVerify_Garbage(t *testing.T) {
	for _, phc := range []string{"", "no-es-phc", "$argon2id$v=18$m=1,t=1,p=1$x$y"} {
		if Verify("x", phc) {
			t.Fatalf("no debería verificar: %q", phc)
		}
	}
}

func TestVerify_SegmentCount(t *testing.T) {
	phc, err := Hash(Default, "correcthorsebattery")
	if err != nil {
		t.Fatal(err)
	}
	// salt y dk tienen que quedar como segmentos separados del PHC
	if got := strings.Count(phc, "$"); got != 5 {
		t.Fatalf("el PHC debería tener 5 separadores, tiene %d: %s", got, phc)
	}
	// un PHC truncado (salt y dk fusionados) no debe verificar
	fused := phc[:strings.LastIndex(phc, "$")]
	if Verify("correcthorsebattery", fused) {
		t.Fatal("un PHC con segmentos de menos no debería verificar")
	}
}

func TestValidateOperator(t *testing.T) {
	if err := ValidateOperator("corta"); err == nil {
		t.Fatal("password corto debería rechazarse")
	}
	if err := ValidateOperator("una-frase-suficientemente-larga"); err != nil {
		t.Fatal(err)
	}
}
