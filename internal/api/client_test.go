package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientSendsBearerHeaderWhenTokenPresent(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, func() string { return "t1" })
	if err := client.Get(context.Background(), "/user", nil); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if gotAuth != "Bearer t1" {
		t.Fatalf("unexpected Authorization header: got=%q want=%q", gotAuth, "Bearer t1")
	}
}

func TestClientOmitsAuthorizationWithoutToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, func() string { return "" })
	if err := client.Get(context.Background(), "/user", nil); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no Authorization header, got %q", gotAuth)
	}
}

func TestClientExtractsServerMessageOnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid credentials"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, nil)
	err := client.Post(context.Background(), "/auth/login", map[string]string{}, nil)
	if err == nil {
		t.Fatalf("expected error for 401 response")
	}
	if got := ErrorMessage(err, "fallback"); got != "Invalid credentials" {
		t.Fatalf("unexpected error message: got=%q want=%q", got, "Invalid credentials")
	}
}

func TestClientFallsBackWhenErrorBodyHasNoMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, nil)
	err := client.Get(context.Background(), "/user", nil)
	if err == nil {
		t.Fatalf("expected error for 500 response")
	}
	if got := ErrorMessage(err, "Unable to login"); got != "Unable to login" {
		t.Fatalf("unexpected fallback message: got=%q", got)
	}
}

func TestClientDecodesSuccessResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"1","name":"A"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, nil)
	var out struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := client.Get(context.Background(), "/user", &out); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if out.ID != "1" || out.Name != "A" {
		t.Fatalf("unexpected decoded payload: %+v", out)
	}
}

func TestErrorMessageTransportFailureUsesFallback(t *testing.T) {
	client := NewClient("http://127.0.0.1:0", 200*time.Millisecond, nil)
	err := client.Get(context.Background(), "/user", nil)
	if err == nil {
		t.Fatalf("expected transport error")
	}
	if got := ErrorMessage(err, "timed out"); got != "timed out" {
		t.Fatalf("unexpected message for transport failure: got=%q", got)
	}
}
