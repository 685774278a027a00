package ar

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ResolvePlatform resolve o handle de plataforma no startup.
// Retorna nil onde o conceito de pacote companheiro não se aplica;
// o bridge então falha uniformemente com CodeBridgeUnavailable em vez
// de espalhar branches por SO pelo código.
func ResolvePlatform() Platform {
	switch runtime.GOOS {
	case "darwin":
		return &darwinPlatform{}
	case "linux":
		return &linuxPlatform{}
	default:
		return nil
	}
}

// WatchDirs retorna os diretórios onde a instalação do app companheiro
// se manifesta no filesystem, para reconciliação via watcher. Vazio em
// plataformas sem suporte.
func WatchDirs() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"/Applications"}
	case "linux":
		return ApplicationDirs()
	default:
		return nil
	}
}

// === macOS ===

// darwinPlatform consulta o índice Spotlight pelo bundle identifier e
// lança via `open -b`. O activity name vira argumento de linha de
// comando do app UE (não há conceito de activity no macOS).
type darwinPlatform struct{}

func (p *darwinPlatform) IsInstalled(packageName string) (bool, error) {
	query := fmt.Sprintf("kMDItemCFBundleIdentifier == '%s'", packageName)
	out, err := exec.Command("mdfind", query).Output()
	if err != nil {
		return false, fmt.Errorf("mdfind query failed: %w", err)
	}
	return strings.TrimSpace(string(out)) != "", nil
}

func (p *darwinPlatform) Launch(packageName, activityName string) error {
	args := []string{"-b", packageName}
	if activityName != "" {
		args = append(args, "--args", "-activity", activityName)
	}
	if out, err := exec.Command("open", args...).CombinedOutput(); err != nil {
		detail := strings.TrimSpace(string(out))
		if detail == "" {
			detail = err.Error()
		}
		return NewBridgeError(CodeLaunch, detail)
	}
	return nil
}

// === Linux ===

// linuxPlatform localiza a entrada .desktop do pacote nos diretórios de
// aplicações XDG e lança via gtk-launch. O activity name mapeia para uma
// Desktop Action declarada na entrada.
type linuxPlatform struct{}

func (p *linuxPlatform) IsInstalled(packageName string) (bool, error) {
	return p.desktopEntryPath(packageName) != "", nil
}

func (p *linuxPlatform) Launch(packageName, activityName string) error {
	entryPath := p.desktopEntryPath(packageName)
	if entryPath == "" {
		return NewBridgeError(CodeAppNotInstalled, "AR app is not installed")
	}

	args := []string{packageName}
	if activityName != "" {
		declared, err := desktopEntryDeclaresAction(entryPath, activityName)
		if err != nil {
			return NewBridgeError(CodeLaunch, err.Error())
		}
		if !declared {
			return NewBridgeError(CodeComponentNotFound,
				fmt.Sprintf("Activity %s not found in package %s", activityName, packageName))
		}
		args = append(args, activityName)
	}

	if out, err := exec.Command("gtk-launch", args...).CombinedOutput(); err != nil {
		detail := strings.TrimSpace(string(out))
		if detail == "" {
			detail = err.Error()
		}
		return NewBridgeError(CodeLaunch, detail)
	}
	return nil
}

// ApplicationDirs retorna os diretórios XDG onde entradas .desktop são
// registradas, na ordem de precedência.
func ApplicationDirs() []string {
	dirs := make([]string, 0, 4)

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dataHome = filepath.Join(home, ".local", "share")
		}
	}
	if dataHome != "" {
		dirs = append(dirs, filepath.Join(dataHome, "applications"))
	}

	dataDirs := os.Getenv("XDG_DATA_DIRS")
	if dataDirs == "" {
		dataDirs = "/usr/local/share:/usr/share"
	}
	for _, dir := range strings.Split(dataDirs, ":") {
		if dir = strings.TrimSpace(dir); dir != "" {
			dirs = append(dirs, filepath.Join(dir, "applications"))
		}
	}
	return dirs
}

func (p *linuxPlatform) desktopEntryPath(packageName string) string {
	for _, dir := range ApplicationDirs() {
		candidate := filepath.Join(dir, packageName+".desktop")
		if fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

// desktopEntryDeclaresAction verifica se a entrada .desktop declara a
// Desktop Action pedida (grupo [Desktop Action <name>]).
func desktopEntryDeclaresAction(entryPath, action string) (bool, error) {
	raw, err := os.ReadFile(entryPath)
	if err != nil {
		return false, fmt.Errorf("failed to read desktop entry: %w", err)
	}

	header := "[Desktop Action " + action + "]"
	for _, line := range strings.Split(string(raw), "\n") {
		if strings.TrimSpace(line) == header {
			return true, nil
		}
	}
	return false, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
