package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"ksit/internal/api"
	"ksit/internal/ar"
	"ksit/internal/auth"
)

// memoryStore implementa auth.SessionStore em memória para os testes
// de binding (o keychain real não está disponível no ambiente de CI).
type memoryStore struct {
	mu      sync.Mutex
	token   string
	profile *auth.UserProfile
}

func (m *memoryStore) Save(token string, profile *auth.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.profile = profile
	return nil
}

func (m *memoryStore) Read() (auth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return auth.Session{Token: m.token, Profile: m.profile}, nil
}

func (m *memoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.profile = nil
	return nil
}

func newTestApp(t *testing.T, handler http.HandlerFunc) *App {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := &memoryStore{}
	client := api.NewClient(server.URL, time.Second, func() string {
		session, _ := store.Read()
		return session.Token
	})

	app := NewApp()
	app.auth = auth.NewService(client, store)
	return app
}

func TestAuthResendOtpEnforcesLimit(t *testing.T) {
	sent := 0
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		sent++
		w.Write([]byte(`{}`))
	})

	for i := 0; i < maxOtpResendAttempts; i++ {
		result := app.AuthResendOtp("5551234", "register")
		if !result.Success {
			t.Fatalf("attempt %d unexpectedly failed: %+v", i+1, result)
		}
	}

	result := app.AuthResendOtp("5551234", "register")
	if result.Success {
		t.Fatalf("expected resend limit to block the fourth attempt")
	}
	if result.Kind != auth.KindResend {
		t.Fatalf("unexpected kind: got=%q want=%q", result.Kind, auth.KindResend)
	}
	if sent != maxOtpResendAttempts {
		t.Fatalf("blocked attempt must not hit the network: got %d requests", sent)
	}
}

func TestAuthResendOtpLimitIsPerPhone(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	for i := 0; i < maxOtpResendAttempts; i++ {
		app.AuthResendOtp("5551234", "register")
	}

	if result := app.AuthResendOtp("5559999", "register"); !result.Success {
		t.Fatalf("limit must be tracked per phone, got %+v", result)
	}
}

func TestAuthVerifyOtpResetsResendCounter(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/verify-otp" {
			w.Write([]byte(`{"token":"t1","user":{"id":"1","name":"A","email":"a@b.com","phone":"5551234"}}`))
			return
		}
		w.Write([]byte(`{}`))
	})

	for i := 0; i < maxOtpResendAttempts; i++ {
		app.AuthResendOtp("5551234", "register")
	}

	result := app.AuthVerifyOtp("5551234", "000000")
	if !result.Success || result.User == nil {
		t.Fatalf("verification failed: %+v", result)
	}

	if result := app.AuthResendOtp("5551234", "reset"); !result.Success {
		t.Fatalf("counter must reset after successful verification, got %+v", result)
	}
}

func TestAuthLoginBindingCarriesKindOnFailure(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid credentials"}`))
	})

	result := app.AuthLogin("a@b.com", "wrong")
	if result.Success {
		t.Fatalf("expected login failure")
	}
	if result.Kind != auth.KindLogin || result.Message != "Invalid credentials" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestARResultFromErrorPreservesBridgeCode(t *testing.T) {
	err := ar.NewBridgeError(ar.CodeAppNotInstalled, "AR app is not installed")

	result := arResultFromError(err)
	if result.Success || result.Code != ar.CodeAppNotInstalled {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestARResultFromErrorWrapsGenericError(t *testing.T) {
	result := arResultFromError(errors.New("boom"))
	if result.Success || result.Code != ar.CodeLaunch || result.Message != "boom" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestAuthResultFromErrorPlainError(t *testing.T) {
	result := authResultFromError(errors.New("boom"))
	if result.Success || result.Kind != "" || result.Message != "boom" {
		t.Fatalf("unexpected result: %+v", result)
	}
}
