package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	// AppName é o nome do aplicativo
	AppName = "KSIT Campus Explorer"

	// AppVersion é a versão atual
	AppVersion = "1.0.0"

	// AppBundleID é o bundle identifier do aplicativo
	AppBundleID = "com.ksitarcampusexplorer"

	// DBFileName é o nome do arquivo SQLite
	DBFileName = "ksit_data.db"
)

// Env agrupa os valores configuráveis por variável de ambiente.
// Os defaults apontam para o backend de produção e para o pacote
// oficial da experiência AR (Unreal Engine).
type Env struct {
	APIBaseURL     string        `env:"KSIT_API_BASE_URL" envDefault:"https://api.ksitcampus.app/api"`
	APITimeout     time.Duration `env:"KSIT_API_TIMEOUT" envDefault:"10s"`
	ARPackageName  string        `env:"KSIT_UE_PACKAGE_NAME" envDefault:"com.ksit.ar"`
	ARActivityName string        `env:"KSIT_UE_ACTIVITY_NAME" envDefault:"com.epicgames.unreal.GameActivity"`
	ARDownloadURL  string        `env:"KSIT_AR_DOWNLOAD_URL" envDefault:"https://downloads.ksitcampus.app/ksit-ar/latest"`
}

// LoadEnv carrega a configuração de ambiente. Em caso de valor
// malformado retorna o struct parcialmente preenchido junto do erro,
// para o app seguir com o que for utilizável.
func LoadEnv() (*Env, error) {
	cfg := Env{}
	if err := env.Parse(&cfg); err != nil {
		return &cfg, fmt.Errorf("failed to parse env config: %w", err)
	}
	return &cfg, nil
}

// DataDir retorna o diretório raiz de dados do app
func DataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Library", "Application Support", "KSIT Campus Explorer")
}

// DBPath retorna o caminho do arquivo SQLite
func DBPath() string {
	return filepath.Join(DataDir(), DBFileName)
}

// LogDir retorna o diretório de logs
func LogDir() string {
	return filepath.Join(DataDir(), "logs")
}

// EnsureDataDirs cria os diretórios necessários se não existirem
func EnsureDataDirs() error {
	dirs := []string{
		DataDir(),
		LogDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	return nil
}
