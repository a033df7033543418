package dto

// UpdateAgencyRequest body para PUT /api/agency.
type UpdateAgencyRequest struct {
	Name            string `json:"name,omitempty"`
	DefaultCurrency string `json:"default_currency,omitempty"`
	Plan            string `json:"plan,omitempty"`
}

// AgencyResponse agencia en respuestas, incluye el uso del mes en curso para
// que la UI pueda mostrar el aviso de upgrade antes del 403.
type AgencyResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	DefaultCurrency string `json:"default_currency"`
	Plan            string `json:"plan"`
	MonthlyLimit    int64  `json:"monthly_invoice_limit"` // 0 = ilimitado
	MonthlyUsage    int64  `json:"monthly_invoice_usage"`
}
