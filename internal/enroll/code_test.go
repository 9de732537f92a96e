package enroll

import (
	"strings"
	"testing"
)

func TestGenerateCodeShape(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != codeLength {
			t.Fatalf("expected %d chars, got %q", codeLength, code)
		}
		for _, c := range code {
			if !strings.ContainsRune(codeAlphabet, c) {
				t.Fatalf("char %q outside alphabet in %q", c, code)
			}
		}
		seen[code] = true
	}
	// 200 выборок из 32^8 — коллизии практически исключены
	if len(seen) < 199 {
		t.Fatalf("suspicious collision rate: %d unique of 200", len(seen))
	}
}

func TestNormalizeCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{"ab12cd34", "AB12CD34"},
		{"  AB12CD34\n", "AB12CD34"},
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		if got := NormalizeCode(c.in); got != c.want {
			t.Fatalf("NormalizeCode(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
