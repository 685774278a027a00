package ar

import (
	"log"
	"sync"
)

// Bridge detecta se o app AR companheiro está instalado e o lança.
// Dono exclusivo do par efêmero {installed, checking}; não guarda
// nenhum outro estado entre chamadas.
type Bridge struct {
	platform Platform

	mu    sync.RWMutex
	avail Availability

	// Callback para emitir eventos Wails (injetado pelo app.go)
	emitEvent func(eventName string, data interface{})
}

// NewBridge cria o bridge AR. platform pode ser nil (plataforma sem
// suporte); emitEvent pode ser nil (sem observadores).
func NewBridge(platform Platform, emitEvent func(eventName string, data interface{})) *Bridge {
	return &Bridge{
		platform:  platform,
		emitEvent: emitEvent,
	}
}

// Supported informa se a plataforma atual tem conceito de pacotes
// companheiros.
func (b *Bridge) Supported() bool {
	return b.platform != nil
}

// Availability retorna o último resultado de checagem.
func (b *Bridge) Availability() Availability {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.avail
}

// CheckAvailability consulta o registro de pacotes da plataforma.
// Fail-closed: qualquer falha do colaborador (incluindo plataforma sem
// suporte) resolve installed=false, nunca propaga erro. Seguro para
// chamadas repetidas; o resultado da última chamada vence.
func (b *Bridge) CheckAvailability(packageName string) Availability {
	b.setAvailability(func(a *Availability) {
		a.Checking = true
	})

	installed := false
	if b.platform != nil && packageName != "" {
		result, err := b.platform.IsInstalled(packageName)
		if err != nil {
			log.Printf("[AR] Availability check failed for %s: %v", packageName, err)
		} else {
			installed = result
		}
	}

	b.setAvailability(func(a *Availability) {
		a.Installed = installed
		a.Checking = false
	})
	return b.Availability()
}

// Launch inicia o componente alvo dentro do app companheiro.
// Reverifica a instalação antes de lançar (defesa contra flag de
// disponibilidade obsoleta). Fire-and-forget: o bridge não acompanha o
// ciclo de vida do app lançado.
func (b *Bridge) Launch(packageName, activityName string) error {
	if b.platform == nil {
		return NewBridgeError(CodeBridgeUnavailable, "AR launcher not available on this platform")
	}

	installed, err := b.platform.IsInstalled(packageName)
	if err != nil || !installed {
		if err != nil {
			log.Printf("[AR] Pre-launch install check failed for %s: %v", packageName, err)
		}
		return NewBridgeError(CodeAppNotInstalled, "AR app is not installed")
	}

	if err := b.platform.Launch(packageName, activityName); err != nil {
		if bridgeErr := AsBridgeError(err); bridgeErr != nil {
			return bridgeErr
		}
		return NewBridgeError(CodeLaunch, err.Error())
	}

	log.Printf("[AR] Launched %s/%s", packageName, activityName)
	return nil
}

func (b *Bridge) setAvailability(mutate func(*Availability)) {
	b.mu.Lock()
	mutate(&b.avail)
	snapshot := b.avail
	emit := b.emitEvent
	b.mu.Unlock()

	if emit != nil {
		emit("ar:availability", snapshot)
	}
}
