package domain

// ErrorResponse é a estrutura padronizada para respostas de erro na API.
// @Description Estrutura padronizada para respostas de erro na API.
type ErrorResponse struct {
	Code     int    `json:"code" example:"400"`
	Category string `json:"category" example:"VALIDATION_ERROR"`
	Message  string `json:"message" example:"O campo 'name' é obrigatório."`
}

// MessageResponse é o corpo de sucesso das operações que não retornam entidade.
type MessageResponse struct {
	Message string `json:"message" example:"Usuário registrado com sucesso."`
}
