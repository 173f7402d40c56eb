package domain

// CouplingRecord — одна строка файла lambda: результат для одного
// значения уширения, которое перебрал движок.
type CouplingRecord struct {
	// Broadening — уширение (Ry).
	Broadening float64 `json:"broadening"`

	// Lambda — константа электрон-фононной связи.
	Lambda float64 `json:"lambda"`

	// Wlog — логарифмически усреднённая частота фононов (K).
	Wlog float64 `json:"wlog"`
}

// TcResult — критическая температура для одной записи связи.
type TcResult struct {
	Broadening float64 `json:"broadening"`
	Wlog       float64 `json:"wlog"`
	Lambda     float64 `json:"lambda"`
	Tc         float64 `json:"tc"`
}
