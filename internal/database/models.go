package database

import "time"

// UserConfig armazena preferências locais do aplicativo
type UserConfig struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	DeviceID            string    `gorm:"uniqueIndex;not null" json:"deviceId"`
	Theme               string    `gorm:"default:dark" json:"theme"`
	Language            string    `gorm:"default:en" json:"language"`
	OnboardingCompleted bool      `gorm:"default:false" json:"onboardingCompleted"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// AuthEvent armazena a trilha local de eventos de autenticação.
// Detail já chega sanitizado (sem tokens, senhas ou códigos OTP).
type AuthEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Action    string    `gorm:"index;not null" json:"action"`
	Detail    string    `gorm:"type:text" json:"detail"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}
