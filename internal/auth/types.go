package auth

// UserProfile representa o perfil do usuário autenticado.
// A identidade é o ID; atualizações substituem o snapshot inteiro
// (last write wins, sem merge por campo).
type UserProfile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	ProfileImage string `json:"profileImage,omitempty"`
	LastLoginAt  string `json:"lastLoginAt,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

// State representa o estado de autenticação observável.
// Loading só é true durante o bootstrap inicial; SplashDone é um
// latch de mão única (false → true, nunca volta).
type State struct {
	User       *UserProfile `json:"user"`
	Loading    bool         `json:"loading"`
	SplashDone bool         `json:"splashDone"`
}

// Session é o par token + perfil reconstruído do armazenamento.
type Session struct {
	Token   string
	Profile *UserProfile
}

// SessionStore é o armazenamento persistido da sessão.
// Save grava token e perfil como unidade (both-or-neither);
// Clear remove ambos; Read retorna o que existir.
type SessionStore interface {
	Save(token string, profile *UserProfile) error
	Read() (Session, error)
	Clear() error
}

// RegisterPayload é o payload de registro de novo usuário.
type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// ProfileUpdate carrega os campos parciais enviados em PUT /user/update.
// Ponteiros nil são omitidos do corpo da requisição.
type ProfileUpdate struct {
	Name         *string `json:"name,omitempty"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	ProfileImage *string `json:"profileImage,omitempty"`
}

// OtpPurpose indica o fluxo dono do código OTP.
type OtpPurpose string

const (
	OtpPurposeRegister OtpPurpose = "register"
	OtpPurposeReset    OtpPurpose = "reset"
)
