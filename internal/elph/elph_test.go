package elph

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shaiso/supercon/internal/domain"
)

// Эталон: (300/1.2)·exp(−1.04·2/(1·(1−0.0062)−0.1)).
const referenceTc = 24.393540908283327

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(b))
}

func TestCalcTc_Reference(t *testing.T) {
	tc, err := CalcTc(300, 1.0, DefaultMu)
	if err != nil {
		t.Fatalf("CalcTc() error = %v", err)
	}
	if !almostEqual(tc, referenceTc) {
		t.Errorf("CalcTc(300, 1.0, 0.1) = %.15f, want %.15f", tc, referenceTc)
	}
}

func TestCalcTc_Values(t *testing.T) {
	tests := []struct {
		wlog, lambda, mu float64
		want             float64
	}{
		{450.2, 0.55, 0.1, 10.153267693457915},
		{370.3209, 0.4587, 0.1, 4.344687804543844},
		{200, 0.8, 0.13, 9.922602683755175},
	}

	for _, tt := range tests {
		got, err := CalcTc(tt.wlog, tt.lambda, tt.mu)
		if err != nil {
			t.Fatalf("CalcTc(%v, %v, %v) error = %v", tt.wlog, tt.lambda, tt.mu, err)
		}
		if !almostEqual(got, tt.want) {
			t.Errorf("CalcTc(%v, %v, %v) = %v, want %v", tt.wlog, tt.lambda, tt.mu, got, tt.want)
		}
	}
}

func TestCalcTc_DomainError(t *testing.T) {
	tests := []struct {
		name   string
		lambda float64
		mu     float64
	}{
		{"zero lambda", 0, 0.1},
		{"lambda below mu", 0.1, 0.1},
		{"negative lambda", -0.5, 0.1},
		{"NaN lambda", math.NaN(), 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CalcTc(300, tt.lambda, tt.mu)
			if !errors.Is(err, ErrDomain) {
				t.Fatalf("CalcTc() error = %v, want ErrDomain", err)
			}
			var dErr *DomainError
			if !errors.As(err, &dErr) {
				t.Fatalf("expected DomainError, got %T", err)
			}
		})
	}
}

func TestParseCoupling_Empty(t *testing.T) {
	records, err := ParseCoupling(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseCoupling() error = %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("ParseCoupling() = %v, want empty non-nil slice", records)
	}
}

func TestParseCoupling_SingleLine(t *testing.T) {
	records, err := ParseCoupling(strings.NewReader("Broadening b c 0.55 d e 450.2\n"))
	if err != nil {
		t.Fatalf("ParseCoupling() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Lambda != 0.55 {
		t.Errorf("Lambda = %v, want 0.55", records[0].Lambda)
	}
	if records[0].Wlog != 450.2 {
		t.Errorf("Wlog = %v, want 450.2", records[0].Wlog)
	}
}

func TestParseCouplingFile_EngineOutput(t *testing.T) {
	content := `     lambda		omega_log          T_c
 Broadening   0.0050 lambda       0.4587 dos(Ef)  6.1234 omega_ln [K]   370.3209
 Broadening   0.0100 lambda       0.5500 dos(Ef)  6.0001 omega_ln [K]   450.2000
 some trailing text
 Broadening   0.0150 lambda   1.0D+00 dos(Ef)  5.9000 omega_ln [K]   3.0D+02
`
	path := filepath.Join(t.TempDir(), "lambda")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	records, err := ParseCouplingFile(path)
	if err != nil {
		t.Fatalf("ParseCouplingFile() error = %v", err)
	}

	want := []domain.CouplingRecord{
		{Broadening: 0.005, Lambda: 0.4587, Wlog: 370.3209},
		{Broadening: 0.01, Lambda: 0.55, Wlog: 450.2},
		{Broadening: 0.015, Lambda: 1.0, Wlog: 300},
	}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d", len(records), len(want))
	}
	for i := range want {
		if records[i] != want[i] {
			t.Errorf("records[%d] = %+v, want %+v", i, records[i], want[i])
		}
	}

	results, err := Evaluate(records, DefaultMu)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !almostEqual(results[2].Tc, referenceTc) {
		t.Errorf("results[2].Tc = %v, want %v", results[2].Tc, referenceTc)
	}
	if !almostEqual(results[1].Tc, 10.153267693457915) {
		t.Errorf("results[1].Tc = %v", results[1].Tc)
	}
}

func TestParseCouplingFile_Errors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad")
	if err := os.WriteFile(bad, []byte("Broadening 0.005 lambda abc x 300\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	short := filepath.Join(dir, "short")
	if err := os.WriteFile(short, []byte("Broadening 0.005\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{bad, short, filepath.Join(dir, "missing")} {
		_, err := ParseCouplingFile(path)
		if !errors.Is(err, ErrParse) {
			t.Errorf("ParseCouplingFile(%s) error = %v, want ErrParse", filepath.Base(path), err)
			continue
		}
		var pErr *ParseError
		if errors.As(err, &pErr) && pErr.Path != path {
			t.Errorf("ParseError.Path = %q, want %q", pErr.Path, path)
		}
	}
}

func TestEvaluate_StopsOnDomainError(t *testing.T) {
	records := []domain.CouplingRecord{
		{Lambda: 1.0, Wlog: 300},
		{Lambda: 0.05, Wlog: 300},
	}

	if _, err := Evaluate(records, DefaultMu); !errors.Is(err, ErrDomain) {
		t.Errorf("Evaluate() error = %v, want ErrDomain", err)
	}
}
