package dto

// DateLayout formato de fechas en la API (ISO-8601, solo fecha).
const DateLayout = "2006-01-02"

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MessageResponse respuesta simple para operaciones sin cuerpo de salida.
type MessageResponse struct {
	Message string `json:"message"`
}
