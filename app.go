package main

import (
	"context"
	"log"
	"sync"
	"time"

	"ksit/internal/api"
	"ksit/internal/ar"
	"ksit/internal/auth"
	"ksit/internal/config"
	"ksit/internal/database"
	"ksit/internal/installwatch"
	"ksit/internal/keychain"
	"ksit/internal/security"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// maxOtpResendAttempts é o limite de reenvios de OTP por telefone.
// Política da camada de apresentação; o serviço de sessão não a conhece.
const maxOtpResendAttempts = 3

// Delays da reconciliação pós-instalação (espelham o cliente mobile:
// rechecagem ~1s após o instalador e de novo ~3s depois).
const (
	installRecheckFirstDelay  = 1 * time.Second
	installRecheckSecondDelay = 3 * time.Second
)

// App struct — ponto central do Wails, conecta todos os services
type App struct {
	ctx          context.Context
	env          *config.Env
	db           *database.Service
	store        *keychain.Store
	client       *api.Client
	auth         *auth.Service
	bridge       *ar.Bridge
	installWatch *installwatch.Service
	logSanitizer *security.LogSanitizer

	resendMu       sync.Mutex
	resendAttempts map[string]int // phone+purpose -> tentativas de reenvio
}

// NewApp creates a new App application struct
func NewApp() *App {
	return &App{
		resendAttempts: make(map[string]int),
	}
}

// Startup is called when the app starts
// Inicializa config, banco, keychain, sessão e bridge AR
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	log.Println("[KSIT] Starting up...")

	// 1. Garantir diretórios existem
	if err := config.EnsureDataDirs(); err != nil {
		log.Printf("[KSIT] Error creating data dirs: %v", err)
	}

	// 2. Carregar configuração de ambiente
	envCfg, err := config.LoadEnv()
	if err != nil {
		log.Printf("[KSIT] Error parsing env config: %v", err)
	}
	a.env = envCfg

	// 3. Inicializar banco de dados SQLite
	dbService, err := database.NewService()
	if err != nil {
		log.Printf("[KSIT] Error initializing database: %v", err)
	} else {
		a.db = dbService
		log.Println("[KSIT] Database initialized")
	}

	// 3.1 Sanitizer de logs/auditoria
	a.logSanitizer = security.NewLogSanitizer()

	// 4. Keychain + cliente da API (token lido do keychain por requisição)
	a.store = keychain.NewStore()
	a.client = api.NewClient(a.env.APIBaseURL, a.env.APITimeout, a.store.Token)

	// 5. Serviço de sessão
	a.auth = auth.NewService(a.client, a.store)
	a.auth.SetAuditFunc(func(action, detail string) {
		if a.db == nil {
			return
		}
		if err := a.db.SaveAuthEvent(action, a.logSanitizer.Sanitize(detail)); err != nil {
			log.Printf("[KSIT] Failed to record auth event: %v", err)
		}
	})
	a.auth.Subscribe(func(state auth.State) {
		if a.ctx == nil {
			return
		}
		runtime.EventsEmit(a.ctx, "auth:changed", state)
	})
	log.Println("[KSIT] Auth service initialized")

	// 6. Bridge AR (handle de plataforma resolvido uma vez no startup)
	a.bridge = ar.NewBridge(ar.ResolvePlatform(), func(eventName string, data interface{}) {
		if a.ctx == nil {
			return
		}
		runtime.EventsEmit(a.ctx, eventName, data)
	})
	if a.bridge.Supported() {
		log.Println("[KSIT] AR bridge initialized")
	} else {
		log.Println("[KSIT] AR bridge unavailable on this platform")
	}

	// 6.1 Watcher de instalação: rechecagem quando o registro de
	// aplicações muda fora da janela de polling
	iwService, err := installwatch.NewService(a.env.ARPackageName, func() {
		a.bridge.CheckAvailability(a.env.ARPackageName)
	})
	if err != nil {
		log.Printf("[KSIT] Error initializing install watcher: %v", err)
	} else {
		a.installWatch = iwService
		for _, dir := range ar.WatchDirs() {
			_ = a.installWatch.Watch(dir)
		}
	}

	// 7. Bootstrap da sessão (uma vez por processo) + checagem inicial AR
	go a.auth.Bootstrap(context.Background())
	go a.bridge.CheckAvailability(a.env.ARPackageName)
}

// DomReady is called when the frontend DOM is ready
func (a *App) DomReady(ctx context.Context) {
	log.Println("[KSIT] DOM Ready")
	a.emitHydration()
}

// Shutdown is called when the app is shutting down
func (a *App) Shutdown(ctx context.Context) {
	log.Println("[KSIT] Shutting down...")

	if a.installWatch != nil {
		if err := a.installWatch.Close(); err != nil {
			log.Printf("[KSIT] Error closing install watcher: %v", err)
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Printf("[KSIT] Error closing database: %v", err)
		}
	}
}

// OnForeground é chamado quando a janela volta ao foco: recheca a
// disponibilidade do app AR (instalações podem completar em background).
func (a *App) OnForeground() {
	if a.bridge == nil || a.env == nil {
		return
	}
	go a.bridge.CheckAvailability(a.env.ARPackageName)
}

// === Tipos expostos ao Frontend via Wails bindings ===

// HydrationPayload é o payload enviado ao frontend no startup
type HydrationPayload struct {
	Auth                auth.State      `json:"auth"`
	ARSupported         bool            `json:"arSupported"`
	ARAvailability      ar.Availability `json:"arAvailability"`
	Theme               string          `json:"theme"`
	Language            string          `json:"language"`
	OnboardingCompleted bool            `json:"onboardingCompleted"`
	Version             string          `json:"version"`
}

// AuthResultDTO é o resultado serializado de uma operação de sessão.
// Kind permite ao frontend escolher a remediação sem string-matching.
type AuthResultDTO struct {
	Success bool              `json:"success"`
	Kind    string            `json:"kind,omitempty"`
	Message string            `json:"message,omitempty"`
	User    *auth.UserProfile `json:"user,omitempty"`
}

// ARResultDTO é o resultado serializado de uma operação do bridge AR.
type ARResultDTO struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func authResultFromError(err error) AuthResultDTO {
	if err == nil {
		return AuthResultDTO{Success: true}
	}
	if authErr, ok := err.(*auth.AuthError); ok {
		return AuthResultDTO{Success: false, Kind: authErr.Kind, Message: authErr.Message}
	}
	return AuthResultDTO{Success: false, Message: err.Error()}
}

func arResultFromError(err error) ARResultDTO {
	if err == nil {
		return ARResultDTO{Success: true}
	}
	if bridgeErr := ar.AsBridgeError(err); bridgeErr != nil {
		return ARResultDTO{Success: false, Code: bridgeErr.Code, Message: bridgeErr.Message}
	}
	return ARResultDTO{Success: false, Code: ar.CodeLaunch, Message: err.Error()}
}

// getHydrationPayload constrói o payload inicial
func (a *App) getHydrationPayload() HydrationPayload {
	payload := HydrationPayload{
		Auth:        a.auth.GetState(),
		ARSupported: a.bridge.Supported(),
		Theme:       "dark",
		Language:    "en",
		Version:     config.AppVersion,
	}
	payload.ARAvailability = a.bridge.Availability()

	if a.db != nil {
		if cfg, err := a.db.GetConfig(); err == nil {
			payload.Theme = cfg.Theme
			payload.Language = cfg.Language
			payload.OnboardingCompleted = cfg.OnboardingCompleted
		}
	}

	return payload
}

// emitHydration envia o estado inicial para o frontend
func (a *App) emitHydration() {
	payload := a.getHydrationPayload()
	runtime.EventsEmit(a.ctx, "app:hydrated", payload)
	log.Println("[KSIT] Hydration emitted")
}

// === Auth Bindings (expostos ao Frontend) ===

// GetAuthState retorna o estado atual de autenticação
func (a *App) GetAuthState() auth.State {
	if a.auth == nil {
		return auth.State{Loading: true}
	}
	return a.auth.GetState()
}

// AuthLogin autentica com email e senha
func (a *App) AuthLogin(email, password string) AuthResultDTO {
	err := a.auth.Login(context.Background(), email, password)
	if err != nil {
		log.Printf("[KSIT] Login failed: %v", err)
		return authResultFromError(err)
	}
	state := a.auth.GetState()
	return AuthResultDTO{Success: true, User: state.User}
}

// AuthRegister registra um novo usuário (dispara envio de OTP; nenhuma
// sessão é criada até a verificação)
func (a *App) AuthRegister(payload auth.RegisterPayload) AuthResultDTO {
	err := a.auth.Register(context.Background(), payload)
	return authResultFromError(err)
}

// AuthVerifyOtp confirma o código OTP de registro
func (a *App) AuthVerifyOtp(phone, code string) AuthResultDTO {
	err := a.auth.VerifyRegistration(context.Background(), phone, code)
	if err != nil {
		return authResultFromError(err)
	}
	a.resetResendCounter(phone)
	state := a.auth.GetState()
	return AuthResultDTO{Success: true, User: state.User}
}

// AuthResendOtp reenvia o código OTP, respeitando o limite de tentativas
func (a *App) AuthResendOtp(phone, purpose string) AuthResultDTO {
	key := phone + ":" + purpose

	a.resendMu.Lock()
	attempts := a.resendAttempts[key]
	if attempts >= maxOtpResendAttempts {
		a.resendMu.Unlock()
		return AuthResultDTO{
			Success: false,
			Kind:    auth.KindResend,
			Message: "Resend limit reached. Please try again later.",
		}
	}
	a.resendAttempts[key] = attempts + 1
	a.resendMu.Unlock()

	err := a.auth.ResendOtp(context.Background(), phone, auth.OtpPurpose(purpose))
	return authResultFromError(err)
}

func (a *App) resetResendCounter(phone string) {
	a.resendMu.Lock()
	defer a.resendMu.Unlock()
	for _, purpose := range []auth.OtpPurpose{auth.OtpPurposeRegister, auth.OtpPurposeReset} {
		delete(a.resendAttempts, phone+":"+string(purpose))
	}
}

// AuthForgotPassword dispara a recuperação de senha
func (a *App) AuthForgotPassword(email string) AuthResultDTO {
	message, err := a.auth.ForgotPassword(context.Background(), email)
	if err != nil {
		return authResultFromError(err)
	}
	return AuthResultDTO{Success: true, Message: message}
}

// AuthResetPassword redefine a senha via OTP (não autentica; o frontend
// roteia para o login em seguida)
func (a *App) AuthResetPassword(phone, code, newPassword string) AuthResultDTO {
	message, err := a.auth.ResetPassword(context.Background(), phone, code, newPassword)
	if err != nil {
		return authResultFromError(err)
	}
	return AuthResultDTO{Success: true, Message: message}
}

// AuthLogout encerra a sessão (incondicional; nunca falha)
func (a *App) AuthLogout() {
	a.auth.Logout()
}

// ProfileRefresh rebusca o perfil do backend
func (a *App) ProfileRefresh() AuthResultDTO {
	err := a.auth.RefreshProfile(context.Background())
	if err != nil {
		return authResultFromError(err)
	}
	state := a.auth.GetState()
	return AuthResultDTO{Success: true, User: state.User}
}

// ProfileUpdate atualiza campos do perfil
func (a *App) ProfileUpdate(updates auth.ProfileUpdate) AuthResultDTO {
	err := a.auth.UpdateProfile(context.Background(), updates)
	if err != nil {
		return authResultFromError(err)
	}
	state := a.auth.GetState()
	return AuthResultDTO{Success: true, User: state.User}
}

// SplashComplete marca o splash como concluído (latch de mão única)
func (a *App) SplashComplete() {
	a.auth.CompleteSplash()
}

// === AR Bridge Bindings ===

// ARSupported informa se a plataforma suporta o app companheiro
func (a *App) ARSupported() bool {
	return a.bridge != nil && a.bridge.Supported()
}

// ARGetAvailability retorna o último resultado de checagem
func (a *App) ARGetAvailability() ar.Availability {
	if a.bridge == nil {
		return ar.Availability{}
	}
	return a.bridge.Availability()
}

// ARCheckAvailability recomputa a disponibilidade consultando a plataforma
func (a *App) ARCheckAvailability() ar.Availability {
	if a.bridge == nil {
		return ar.Availability{}
	}
	return a.bridge.CheckAvailability(a.env.ARPackageName)
}

// ARLaunch inicia a experiência AR no app companheiro
func (a *App) ARLaunch() ARResultDTO {
	if a.bridge == nil {
		return ARResultDTO{Success: false, Code: ar.CodeBridgeUnavailable, Message: "AR launcher not available"}
	}
	err := a.bridge.Launch(a.env.ARPackageName, a.env.ARActivityName)
	if err != nil {
		log.Printf("[KSIT] AR launch failed: %v", err)
	}
	return arResultFromError(err)
}

// ARInstall abre o instalador do app companheiro e agenda as
// rechecagens de reconciliação (1s e 3s depois); instalações mais
// longas são capturadas pelo install watcher ou pelo foreground
func (a *App) ARInstall() {
	runtime.BrowserOpenURL(a.ctx, a.env.ARDownloadURL)

	go func() {
		time.Sleep(installRecheckFirstDelay)
		a.bridge.CheckAvailability(a.env.ARPackageName)
		time.Sleep(installRecheckSecondDelay)
		a.bridge.CheckAvailability(a.env.ARPackageName)
	}()
}

// === Preferências locais ===

// GetUserConfig retorna as preferências locais
func (a *App) GetUserConfig() (database.UserConfig, error) {
	if a.db == nil {
		return database.UserConfig{}, nil
	}
	return a.db.GetConfig()
}

// SetTheme persiste o tema escolhido
func (a *App) SetTheme(theme string) error {
	if a.db == nil {
		return nil
	}
	cfg, err := a.db.GetConfig()
	if err != nil {
		return err
	}
	cfg.Theme = theme
	return a.db.SaveConfig(&cfg)
}

// SetOnboardingCompleted marca o onboarding como concluído
func (a *App) SetOnboardingCompleted() error {
	if a.db == nil {
		return nil
	}
	cfg, err := a.db.GetConfig()
	if err != nil {
		return err
	}
	cfg.OnboardingCompleted = true
	return a.db.SaveConfig(&cfg)
}

// GetAuthEvents lista a trilha local de eventos de autenticação
func (a *App) GetAuthEvents(limit int) ([]database.AuthEvent, error) {
	if a.db == nil {
		return []database.AuthEvent{}, nil
	}
	return a.db.ListAuthEvents(limit)
}
