package database

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"ksit/internal/config"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Service encapsula o acesso ao SQLite via GORM
type Service struct {
	db *gorm.DB
}

// NewService cria e inicializa o serviço de banco de dados
func NewService() (*Service, error) {
	dbPath, db, err := openWritableDatabase()
	if err != nil {
		return nil, err
	}

	// Auto-migrate todos os models
	if err := db.AutoMigrate(
		&UserConfig{},
		&AuthEvent{},
	); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate: %w", err)
	}

	svc := &Service{db: db}
	if err := svc.ensureDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to ensure default config: %w", err)
	}

	// Definir permissão 0600 no arquivo do banco
	os.Chmod(dbPath, 0600)

	log.Printf("[DB] Database initialized at %s", dbPath)
	return svc, nil
}

func openWritableDatabase() (string, *gorm.DB, error) {
	candidates := make([]string, 0, 4)
	if override := strings.TrimSpace(os.Getenv("KSIT_DB_PATH")); override != "" {
		candidates = append(candidates, override)
	}
	candidates = append(candidates, config.DBPath())

	if cwd, err := os.Getwd(); err == nil && strings.TrimSpace(cwd) != "" {
		candidates = append(candidates, filepath.Join(cwd, ".ksit", config.DBFileName))
	}
	candidates = append(candidates, filepath.Join(os.TempDir(), "KSIT", config.DBFileName))

	var lastErr error
	for _, candidate := range candidates {
		path := strings.TrimSpace(candidate)
		if path == "" {
			continue
		}

		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			lastErr = err
			continue
		}

		db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err != nil {
			lastErr = err
			continue
		}

		sqlDB, err := db.DB()
		if err != nil {
			lastErr = err
			continue
		}

		sqlDB.Exec("PRAGMA journal_mode=WAL")
		sqlDB.Exec("PRAGMA busy_timeout=5000")
		sqlDB.Exec("PRAGMA foreign_keys=ON")

		// Probe de escrita para evitar abrir DB readonly em ambientes sandbox.
		probeErr := db.Exec("CREATE TABLE IF NOT EXISTS _ksit_write_probe (id INTEGER PRIMARY KEY AUTOINCREMENT)").Error
		if probeErr == nil {
			probeErr = db.Exec("INSERT INTO _ksit_write_probe DEFAULT VALUES").Error
		}
		if probeErr == nil {
			_ = db.Exec("DELETE FROM _ksit_write_probe WHERE id = (SELECT MAX(id) FROM _ksit_write_probe)").Error
		}

		if probeErr != nil {
			lastErr = probeErr
			_ = sqlDB.Close()
			continue
		}

		return path, db, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no database path candidates available")
	}

	return "", nil, fmt.Errorf("failed to open writable database: %w", lastErr)
}

// Close fecha a conexão com o banco
func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ensureDefaultConfig garante uma linha de configuração com device id.
func (s *Service) ensureDefaultConfig() error {
	var cfg UserConfig
	err := s.db.First(&cfg).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	cfg = UserConfig{
		DeviceID: uuid.NewString(),
		Theme:    "dark",
		Language: "en",
	}
	return s.db.Create(&cfg).Error
}

// GetConfig retorna a configuração local do app.
func (s *Service) GetConfig() (UserConfig, error) {
	var cfg UserConfig
	if err := s.db.First(&cfg).Error; err != nil {
		return UserConfig{}, err
	}
	return cfg, nil
}

// SaveConfig persiste a configuração local.
func (s *Service) SaveConfig(cfg *UserConfig) error {
	if cfg == nil {
		return fmt.Errorf("config must not be nil")
	}
	return s.db.Save(cfg).Error
}

// DeviceID retorna o identificador estável desta instalação.
func (s *Service) DeviceID() string {
	cfg, err := s.GetConfig()
	if err != nil {
		return ""
	}
	return cfg.DeviceID
}

// === AuthEvent CRUD ===

// SaveAuthEvent grava um evento de auditoria de autenticação.
func (s *Service) SaveAuthEvent(action, detail string) error {
	if strings.TrimSpace(action) == "" {
		return fmt.Errorf("action must not be empty")
	}
	event := AuthEvent{
		Action: strings.TrimSpace(action),
		Detail: detail,
	}
	return s.db.Create(&event).Error
}

// ListAuthEvents lista eventos de auditoria em ordem decrescente.
func (s *Service) ListAuthEvents(limit int) ([]AuthEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []AuthEvent
	err := s.db.Order("created_at DESC, id DESC").Limit(limit).Find(&events).Error
	return events, err
}
