package keychain

import (
	"encoding/json"
	"errors"
	"fmt"

	"ksit/internal/auth"
	"ksit/internal/config"

	"github.com/zalando/go-keyring"
)

const (
	// Keychain service name
	keychainService = config.AppBundleID

	// Keychain keys
	keychainSessionToken   = "session_token"
	keychainSessionProfile = "session_profile"
)

// Store persiste a sessão {token, perfil} no keychain do sistema.
// Recurso exclusivo do serviço de autenticação: nenhum outro componente
// lê ou escreve estas chaves.
type Store struct {
	service string
}

// NewStore cria o armazenamento de sessão no keychain padrão do app.
func NewStore() *Store {
	return &Store{service: keychainService}
}

// Save grava token e perfil. A escrita do token vem primeiro; se ela
// falhar nada é gravado (intenção both-or-neither do contrato).
func (s *Store) Save(token string, profile *auth.UserProfile) error {
	if err := keyring.Set(s.service, keychainSessionToken, token); err != nil {
		return fmt.Errorf("failed to store session token: %w", err)
	}

	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal session profile: %w", err)
	}
	if err := keyring.Set(s.service, keychainSessionProfile, string(payload)); err != nil {
		return fmt.Errorf("failed to store session profile: %w", err)
	}
	return nil
}

// Read retorna a sessão persistida; token e/ou perfil podem estar
// ausentes (keychain sem as chaves não é erro).
func (s *Store) Read() (auth.Session, error) {
	session := auth.Session{}

	token, err := keyring.Get(s.service, keychainSessionToken)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return session, nil
		}
		return session, fmt.Errorf("failed to read session token: %w", err)
	}
	session.Token = token

	raw, err := keyring.Get(s.service, keychainSessionProfile)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return session, nil
		}
		return session, fmt.Errorf("failed to read session profile: %w", err)
	}

	var profile auth.UserProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return session, fmt.Errorf("failed to parse session profile: %w", err)
	}
	session.Profile = &profile
	return session, nil
}

// Clear remove token e perfil. Chaves inexistentes são toleradas; o
// primeiro erro real é retornado depois de tentar remover ambas.
func (s *Store) Clear() error {
	var firstErr error
	for _, key := range []string{keychainSessionToken, keychainSessionProfile} {
		if err := keyring.Delete(s.service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to delete keychain key %s: %w", key, err)
			}
		}
	}
	return firstErr
}

// Token lê apenas o token persistido; string vazia quando ausente.
// Usado como TokenSource do cliente HTTP.
func (s *Store) Token() string {
	token, err := keyring.Get(s.service, keychainSessionToken)
	if err != nil {
		return ""
	}
	return token
}
