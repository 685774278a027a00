package ar

import (
	"errors"
	"strings"
)

// Códigos de erro do bridge AR. O frontend decide a remediação pelo
// código ("instalar" vs "não suportado aqui"), nunca pela mensagem.
const (
	CodeBridgeUnavailable = "E_AR_BRIDGE_UNAVAILABLE"
	CodeAppNotInstalled   = "E_AR_APP_NOT_INSTALLED"
	CodeComponentNotFound = "E_AR_COMPONENT_NOT_FOUND"
	CodeLaunch            = "E_AR_LAUNCH"
)

// BridgeError implementa o contrato normalizado de erro do bridge AR.
type BridgeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *BridgeError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// NewBridgeError cria um BridgeError com código e mensagem informados.
func NewBridgeError(code, message string) *BridgeError {
	return &BridgeError{
		Code:    strings.TrimSpace(code),
		Message: strings.TrimSpace(message),
	}
}

// AsBridgeError extrai um *BridgeError da cadeia de erros, ou nil.
func AsBridgeError(err error) *BridgeError {
	if err == nil {
		return nil
	}
	var bridgeErr *BridgeError
	if errors.As(err, &bridgeErr) && bridgeErr != nil {
		return bridgeErr
	}
	return nil
}
