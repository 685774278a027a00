package auth

import "strings"

// Kinds de falha das operações de autenticação. O frontend decide a
// remediação pelo Kind, nunca por matching de mensagem.
const (
	KindLogin           = "E_AUTH_LOGIN"
	KindRegistration    = "E_AUTH_REGISTRATION"
	KindOtpVerification = "E_AUTH_OTP_VERIFICATION"
	KindResend          = "E_AUTH_OTP_RESEND"
	KindRefresh         = "E_AUTH_REFRESH"
	KindProfileUpdate   = "E_AUTH_PROFILE_UPDATE"
	KindForgotPassword  = "E_AUTH_FORGOT_PASSWORD"
	KindResetPassword   = "E_AUTH_RESET_PASSWORD"
	KindSessionRead     = "E_AUTH_SESSION_READ"
)

// AuthError implementa o contrato normalizado de erro das operações de
// sessão: variante etiquetada {Kind, Message}, sempre com mensagem
// legível (a do servidor quando presente, senão o fallback da operação).
type AuthError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (e *AuthError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// NewAuthError cria um AuthError com Kind e mensagem informados.
func NewAuthError(kind, message string) *AuthError {
	return &AuthError{
		Kind:    strings.TrimSpace(kind),
		Message: strings.TrimSpace(message),
	}
}
