package ar

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplicationDirsHonorsXDGOverrides(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	t.Setenv("XDG_DATA_DIRS", "/opt/share:/usr/share")

	dirs := ApplicationDirs()
	want := []string{
		filepath.Join("/custom/data", "applications"),
		filepath.Join("/opt/share", "applications"),
		filepath.Join("/usr/share", "applications"),
	}
	if len(dirs) != len(want) {
		t.Fatalf("unexpected dirs: got=%v want=%v", dirs, want)
	}
	for i := range want {
		if dirs[i] != want[i] {
			t.Fatalf("unexpected dir at %d: got=%q want=%q", i, dirs[i], want[i])
		}
	}
}

func TestDesktopEntryDeclaresAction(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "com.ksit.ar.desktop")
	content := `[Desktop Entry]
Name=KSIT AR
Exec=ksit-ar
Actions=GameActivity;

[Desktop Action GameActivity]
Name=Campus Experience
Exec=ksit-ar --activity GameActivity
`
	if err := os.WriteFile(entry, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write desktop entry: %v", err)
	}

	declared, err := desktopEntryDeclaresAction(entry, "GameActivity")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !declared {
		t.Fatalf("expected GameActivity action to be declared")
	}

	declared, err = desktopEntryDeclaresAction(entry, "OtherActivity")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if declared {
		t.Fatalf("undeclared action must not resolve")
	}
}

func TestLinuxPlatformInstallProbe(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("XDG_DATA_DIRS", "/nonexistent")

	platform := &linuxPlatform{}

	installed, err := platform.IsInstalled("com.ksit.ar")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if installed {
		t.Fatalf("expected not installed before entry exists")
	}

	appsDir := filepath.Join(dir, "applications")
	if err := os.MkdirAll(appsDir, 0755); err != nil {
		t.Fatalf("failed to create applications dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(appsDir, "com.ksit.ar.desktop"), []byte("[Desktop Entry]\n"), 0644); err != nil {
		t.Fatalf("failed to write desktop entry: %v", err)
	}

	installed, err = platform.IsInstalled("com.ksit.ar")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !installed {
		t.Fatalf("expected installed after entry exists")
	}
}
