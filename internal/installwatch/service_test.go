package installwatch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestRelevantFiltersByMarker(t *testing.T) {
	svc := &Service{marker: "com.ksit.ar"}

	cases := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "/apps/com.ksit.ar.desktop", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "/apps/com.ksit.ar.desktop", Op: fsnotify.Remove}, true},
		{fsnotify.Event{Name: "/apps/com.ksit.ar.desktop", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "/apps/other.app.desktop", Op: fsnotify.Create}, false},
	}
	for _, tc := range cases {
		if got := svc.relevant(tc.event); got != tc.want {
			t.Fatalf("relevant(%v %v): got=%v want=%v", tc.event.Op, tc.event.Name, got, tc.want)
		}
	}
}

func TestWatcherFiresOnMarkerCreation(t *testing.T) {
	dir := t.TempDir()

	fired := make(chan struct{}, 1)
	svc, err := NewService("com.ksit.ar", func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	defer svc.Close()

	if err := svc.Watch(dir); err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "com.ksit.ar.desktop"), []byte("[Desktop Entry]\n"), 0644); err != nil {
		t.Fatalf("failed to create marker file: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatalf("expected onChange callback after marker creation")
	}
}

func TestWatchIgnoresMissingDirectory(t *testing.T) {
	svc, err := NewService("com.ksit.ar", nil)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	defer svc.Close()

	// Diretórios inexistentes não derrubam o startup
	if err := svc.Watch(filepath.Join(t.TempDir(), "does-not-exist")); err != nil {
		t.Fatalf("Watch must tolerate missing dirs, got %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	svc, err := NewService("com.ksit.ar", nil)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	if err := svc.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("repeated Close must be a no-op, got %v", err)
	}

	if err := svc.Watch(t.TempDir()); err == nil {
		t.Fatalf("Watch after Close must fail")
	}
}
