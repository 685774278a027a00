package auth

import (
	"context"
	"log"
	"sync"

	"ksit/internal/api"
)

// Mensagens de fallback por operação, usadas quando o backend não
// devolve um campo `message` na resposta de erro.
const (
	fallbackLogin          = "Unable to login"
	fallbackRegistration   = "Registration failed"
	fallbackOtpVerify      = "OTP verification failed"
	fallbackOtpResend      = "Unable to resend OTP"
	fallbackRefresh        = "Unable to refresh profile"
	fallbackProfileUpdate  = "Unable to update profile"
	fallbackForgotPassword = "Unable to process password recovery"
	fallbackResetPassword  = "Unable to reset password"
)

// AuditFunc registra um evento de auditoria (injetado pelo app.go).
type AuditFunc func(action, detail string)

// Listener observa transições de estado de autenticação.
type Listener func(State)

// Service é o dono do ciclo de vida da sessão: máquina de estados de
// autenticação, sessão persistida e snapshot observável. Todas as
// mutações de estado passam por aqui; o armazenamento persistido é
// recurso exclusivo deste serviço.
type Service struct {
	api   *api.Client
	store SessionStore
	audit AuditFunc

	mu        sync.RWMutex
	state     State
	listeners []Listener
}

// NewService cria o serviço de sessão no estado Bootstrapping.
func NewService(client *api.Client, store SessionStore) *Service {
	return &Service{
		api:   client,
		store: store,
		state: State{User: nil, Loading: true, SplashDone: false},
	}
}

// SetAuditFunc injeta o gravador de auditoria (opcional).
func (s *Service) SetAuditFunc(fn AuditFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = fn
}

// GetState retorna o snapshot atual do estado de autenticação.
func (s *Service) GetState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registra um listener de transições de estado e retorna a
// função de unsubscribe. O listener é chamado fora do lock.
func (s *Service) Subscribe(listener Listener) func() {
	s.mu.Lock()
	s.listeners = append(s.listeners, listener)
	index := len(s.listeners) - 1
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if index < len(s.listeners) {
			s.listeners[index] = nil
		}
	}
}

// setState aplica a mutação e notifica listeners com o novo snapshot.
func (s *Service) setState(mutate func(*State)) {
	s.mu.Lock()
	mutate(&s.state)
	snapshot := s.state
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, listener := range listeners {
		if listener != nil {
			listener(snapshot)
		}
	}
}

func (s *Service) recordAudit(action, detail string) {
	s.mu.RLock()
	fn := s.audit
	s.mu.RUnlock()
	if fn != nil {
		fn(action, detail)
	}
}

// Bootstrap reconstrói a sessão a partir do armazenamento persistido.
// Chamado uma vez no startup. Fail-closed: se existe token persistido
// mas o fetch de perfil falha (rede, 401, 500), a sessão persistida é
// limpa e o usuário fica desautenticado.
func (s *Service) Bootstrap(ctx context.Context) {
	session, err := s.store.Read()
	if err != nil {
		// Sessão ilegível é tratada como inexistente; o erro interno
		// (KindSessionRead) não propaga para o caller.
		log.Printf("[AUTH] Session read failed during bootstrap: %v", err)
		if clearErr := s.store.Clear(); clearErr != nil {
			log.Printf("[AUTH] Failed to clear unreadable session: %v", clearErr)
		}
		s.setState(func(st *State) {
			st.User = nil
			st.Loading = false
		})
		return
	}

	if session.Token == "" {
		s.setState(func(st *State) {
			st.User = nil
			st.Loading = false
		})
		return
	}

	var profile UserProfile
	if err := s.api.Get(ctx, "/user", &profile); err != nil {
		log.Printf("[AUTH] Bootstrap profile fetch failed, clearing session: %v", err)
		if clearErr := s.store.Clear(); clearErr != nil {
			log.Printf("[AUTH] Failed to clear stale session: %v", clearErr)
		}
		s.recordAudit("bootstrap_failed", api.ErrorMessage(err, "profile fetch failed"))
		s.setState(func(st *State) {
			st.User = nil
			st.Loading = false
		})
		return
	}

	s.recordAudit("session_restored", "user="+profile.ID)
	s.setState(func(st *State) {
		st.User = &profile
		st.Loading = false
	})
}

// Login autentica com email e senha. Em caso de sucesso persiste
// {token, perfil} antes de publicar a transição em memória, para que
// nenhum observador veja usuário autenticado sem sessão recarregável.
func (s *Service) Login(ctx context.Context, email, password string) error {
	var resp struct {
		Token string      `json:"token"`
		User  UserProfile `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := s.api.Post(ctx, "/auth/login", body, &resp); err != nil {
		return NewAuthError(KindLogin, api.ErrorMessage(err, fallbackLogin))
	}

	if err := s.store.Save(resp.Token, &resp.User); err != nil {
		return NewAuthError(KindLogin, fallbackLogin)
	}

	s.recordAudit("login", "user="+resp.User.ID)
	s.setState(func(st *State) {
		st.User = &resp.User
	})
	return nil
}

// Register dispara o envio de OTP no backend. Não cria sessão nem
// persiste nada; o caller navega para a tela de OTP em seguida.
func (s *Service) Register(ctx context.Context, payload RegisterPayload) error {
	if err := s.api.Post(ctx, "/auth/register", payload, nil); err != nil {
		return NewAuthError(KindRegistration, api.ErrorMessage(err, fallbackRegistration))
	}
	s.recordAudit("register_requested", "email="+payload.Email)
	return nil
}

// VerifyRegistration confirma o OTP de registro. Único caminho além do
// Login que estabelece sessão a partir de estado desautenticado.
func (s *Service) VerifyRegistration(ctx context.Context, phone, code string) error {
	var resp struct {
		Token string      `json:"token"`
		User  UserProfile `json:"user"`
	}
	body := map[string]string{"phone": phone, "code": code, "purpose": string(OtpPurposeRegister)}
	if err := s.api.Post(ctx, "/auth/verify-otp", body, &resp); err != nil {
		return NewAuthError(KindOtpVerification, api.ErrorMessage(err, fallbackOtpVerify))
	}

	if err := s.store.Save(resp.Token, &resp.User); err != nil {
		return NewAuthError(KindOtpVerification, fallbackOtpVerify)
	}

	s.recordAudit("registration_verified", "user="+resp.User.ID)
	s.setState(func(st *State) {
		st.User = &resp.User
	})
	return nil
}

// ResendOtp reenvia o código OTP. Stateless: o limite de tentativas é
// política da camada de apresentação, não deste serviço.
func (s *Service) ResendOtp(ctx context.Context, phone string, purpose OtpPurpose) error {
	body := map[string]string{"phone": phone, "purpose": string(purpose)}
	if err := s.api.Post(ctx, "/auth/send-otp", body, nil); err != nil {
		return NewAuthError(KindResend, api.ErrorMessage(err, fallbackOtpResend))
	}
	return nil
}

// Logout limpa a sessão persistida (best-effort) e publica a transição
// para desautenticado incondicionalmente: uma UI deslogada nunca pode
// continuar aparentando sessão ativa, mesmo se a limpeza falhar.
func (s *Service) Logout() {
	if err := s.store.Clear(); err != nil {
		log.Printf("[AUTH] Warning: failed to clear persisted session on logout: %v", err)
	}
	s.recordAudit("logout", "")
	s.setState(func(st *State) {
		st.User = nil
	})
}

// RefreshProfile rebusca o perfil do backend. Falha transitória não
// derruba a sessão (diferente do fail-closed do Bootstrap). Em caso de
// sucesso, re-persiste {token atual, perfil novo} se há token gravado,
// mantendo armazenamento e memória consistentes.
func (s *Service) RefreshProfile(ctx context.Context) error {
	var profile UserProfile
	if err := s.api.Get(ctx, "/user", &profile); err != nil {
		return NewAuthError(KindRefresh, api.ErrorMessage(err, fallbackRefresh))
	}

	if err := s.repersistProfile(&profile); err != nil {
		return NewAuthError(KindRefresh, fallbackRefresh)
	}

	s.setState(func(st *State) {
		st.User = &profile
	})
	return nil
}

// UpdateProfile envia campos parciais e adota o perfil completo que o
// servidor devolve (servidor é a fonte da verdade, sem merge local).
func (s *Service) UpdateProfile(ctx context.Context, updates ProfileUpdate) error {
	var profile UserProfile
	if err := s.api.Put(ctx, "/user/update", updates, &profile); err != nil {
		return NewAuthError(KindProfileUpdate, api.ErrorMessage(err, fallbackProfileUpdate))
	}

	if err := s.repersistProfile(&profile); err != nil {
		return NewAuthError(KindProfileUpdate, fallbackProfileUpdate)
	}

	s.recordAudit("profile_updated", "user="+profile.ID)
	s.setState(func(st *State) {
		st.User = &profile
	})
	return nil
}

// repersistProfile regrava {token atual, perfil novo} quando existe
// token persistido. Sem token gravado, só a memória muda — comportamento
// herdado do cliente original.
func (s *Service) repersistProfile(profile *UserProfile) error {
	session, err := s.store.Read()
	if err != nil {
		return err
	}
	if session.Token == "" {
		return nil
	}
	return s.store.Save(session.Token, profile)
}

// ForgotPassword dispara o fluxo de recuperação de senha. Stateless;
// retorna a mensagem informativa do backend quando houver.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	body := map[string]string{"email": email}
	if err := s.api.Post(ctx, "/auth/forgot-password", body, &resp); err != nil {
		return "", NewAuthError(KindForgotPassword, api.ErrorMessage(err, fallbackForgotPassword))
	}
	return resp.Message, nil
}

// ResetPassword redefine a senha via OTP. Não autentica o usuário; o
// caller roteia para o login em seguida.
func (s *Service) ResetPassword(ctx context.Context, phone, code, newPassword string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	body := map[string]string{"phone": phone, "code": code, "newPassword": newPassword}
	if err := s.api.Post(ctx, "/auth/reset-password", body, &resp); err != nil {
		return "", NewAuthError(KindResetPassword, api.ErrorMessage(err, fallbackResetPassword))
	}
	return resp.Message, nil
}

// CompleteSplash marca o splash como concluído. Latch de mão única:
// síncrono, sem I/O, no-op se já concluído.
func (s *Service) CompleteSplash() {
	s.mu.RLock()
	done := s.state.SplashDone
	s.mu.RUnlock()
	if done {
		return
	}
	s.setState(func(st *State) {
		st.SplashDone = true
	})
}
