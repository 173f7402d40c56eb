package elph

import (
	"math"

	"github.com/shaiso/supercon/internal/domain"
)

// DefaultMu — кулоновский псевдопотенциал μ* по умолчанию.
const DefaultMu = 0.1

// CalcTc вычисляет Tc по формуле Allen-Dynes:
//
//	Tc = (wlog / 1.2) · exp( −1.04·(1+λ) / (λ·(1−0.062·μ) − μ) )
//
// При λ·(1−0.062·μ) − μ ≤ 0 формула теряет смысл и возвращается *DomainError.
func CalcTc(wlog, lambda, mu float64) (float64, error) {
	denom := lambda*(1-0.062*mu) - mu
	if denom <= 0 || math.IsNaN(denom) {
		return 0, &DomainError{Wlog: wlog, Lambda: lambda, Mu: mu, Denominator: denom}
	}
	return (wlog / 1.2) * math.Exp(-1.04*(1+lambda)/denom), nil
}

// Evaluate вычисляет Tc для каждой записи, сохраняя порядок.
// Первая запись вне области определения прерывает вычисление.
func Evaluate(records []domain.CouplingRecord, mu float64) ([]domain.TcResult, error) {
	results := make([]domain.TcResult, 0, len(records))
	for _, rec := range records {
		tc, err := CalcTc(rec.Wlog, rec.Lambda, mu)
		if err != nil {
			return nil, err
		}
		results = append(results, domain.TcResult{
			Broadening: rec.Broadening,
			Wlog:       rec.Wlog,
			Lambda:     rec.Lambda,
			Tc:         tc,
		})
	}
	return results, nil
}
