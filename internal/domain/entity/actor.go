package entity

// Actor identidad de quien ejecuta una operación; viaja explícita en cada llamada al motor.
type Actor struct {
	UserID string
	Email  string
	Role   string
}

// Name devuelve el identificador a registrar en auditoría.
func (a Actor) Name() string {
	if a.Email != "" {
		return a.Email
	}
	if a.UserID != "" {
		return a.UserID
	}
	return "system"
}
