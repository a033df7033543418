package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP. InvoiceID solo viaja en el código
// ALREADY_CONVERTED para que el frontend pueda redirigir a la factura
// existente en lugar de reintentar la conversión.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	InvoiceID string `json:"invoice_id,omitempty"`
}
