package dto

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// PageRequest paginación para listados (?limit=&offset=).
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage normaliza límite (1..100, 20 por defecto) y offset (>= 0).
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// Response metadatos de la página devuelta; returned es la cantidad de ítems.
func (p PageRequest) Response(returned int) PageResponse {
	return PageResponse{
		Limit:    p.Limit,
		Offset:   p.Offset,
		Returned: returned,
		HasMore:  returned == p.Limit,
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit    int  `json:"limit"`
	Offset   int  `json:"offset"`
	Returned int  `json:"returned"`
	HasMore  bool `json:"has_more"`
}

// ErrorResponse cuerpo de error HTTP. Message en español, MessageEn en inglés.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	MessageEn string `json:"message_en,omitempty"`
}
