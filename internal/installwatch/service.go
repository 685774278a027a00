package installwatch

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Service observa os diretórios de registro de aplicações da plataforma
// e avisa quando o app companheiro aparece ou some fora da janela de
// polling pós-instalação. Complementa — não substitui — as rechecagens
// explícitas disparadas pela camada de apresentação.
type Service struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	debounce *time.Timer
	window   time.Duration
	marker   string
	closed   bool
	done     chan struct{}

	// Callback disparado após o debounce (injetado pelo app.go)
	onChange func()
}

// NewService cria o watcher. marker é o nome do pacote companheiro;
// apenas eventos cujo path o contenha disparam o callback.
func NewService(marker string, onChange func()) (*Service, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	svc := &Service{
		watcher:  watcher,
		window:   800 * time.Millisecond,
		marker:   marker,
		done:     make(chan struct{}),
		onChange: onChange,
	}
	go svc.loop()
	return svc, nil
}

// Watch adiciona um diretório de registro de aplicações ao watcher.
// Diretórios inexistentes são ignorados (nem toda distro tem todos).
func (s *Service) Watch(dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("watcher is closed")
	}

	dir = filepath.Clean(dir)
	if err := s.watcher.Add(dir); err != nil {
		log.Printf("[INSTALLWATCH] Not watching %s: %v", dir, err)
		return nil
	}
	log.Printf("[INSTALLWATCH] Watching %s", dir)
	return nil
}

func (s *Service) loop() {
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !s.relevant(event) {
				continue
			}
			s.schedule()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[INSTALLWATCH] Watcher error: %v", err)
		}
	}
}

// relevant filtra eventos do pacote companheiro (create/remove/rename).
func (s *Service) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if s.marker == "" {
		return true
	}
	return strings.Contains(filepath.Base(event.Name), s.marker)
}

// schedule agenda o callback com debounce: instalações geram rajadas de
// eventos de filesystem e só a última importa.
func (s *Service) schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if s.debounce != nil {
		s.debounce.Stop()
	}
	s.debounce = time.AfterFunc(s.window, func() {
		s.mu.Lock()
		closed := s.closed
		fn := s.onChange
		s.mu.Unlock()
		if closed || fn == nil {
			return
		}
		fn()
	})
}

// Close encerra o watcher e cancela callbacks pendentes.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.debounce != nil {
		s.debounce.Stop()
	}
	close(s.done)
	s.mu.Unlock()

	return s.watcher.Close()
}
