package domain

// SessionData é o retrato do usuário tirado no momento do login, guardado
// no armazenamento de sessões sob o token opaco do cookie.
// A validação posterior sempre reconsulta o usuário no banco: se o usuário
// foi removido depois do login, a sessão é tratada como inválida.
type SessionData struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
}
