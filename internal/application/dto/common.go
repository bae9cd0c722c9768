package dto

// DefaultPageLimit tamaño de página cuando el cliente no envía limit.
const DefaultPageLimit = 20

// PageRequest query limit/offset de los listados. Limit 0 equivale a DefaultPageLimit.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// Effective devuelve la página con el límite por defecto resuelto.
func (p PageRequest) Effective() PageRequest {
	if p.Limit == 0 {
		p.Limit = DefaultPageLimit
	}
	return p
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
