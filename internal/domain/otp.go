package domain

import "time"

// OtpType distingue para qué flujo fue emitido un código.
type OtpType string

const (
	OtpTypeRegister      OtpType = "REGISTER"
	OtpTypeResetPassword OtpType = "RESET_PASSWORD"
)

// OtpCode es un desafío de un solo uso ligado a un usuario.
// El código autoritativo para (usuario, tipo) es siempre el más reciente
// sin usar; los anteriores quedan supersedidos pero no se borran.
type OtpCode struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Code      string     `json:"-"`
	Type      OtpType    `json:"type"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}
