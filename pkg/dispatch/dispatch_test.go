package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendEmailPostsPayload(t *testing.T) {
	var got Email
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "secret")
	err := c.SendEmail(context.Background(), Email{To: "friend@example.com", Subject: "Join us", HTML: "<p>hi</p>"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if got.To != "friend@example.com" || got.Subject != "Join us" {
		t.Fatalf("unexpected payload %+v", got)
	}
	if auth != "Bearer secret" {
		t.Fatalf("unexpected auth header %q", auth)
	}
}

func TestPushLineReportsFunctionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"user blocked the bot"}`))
	}))
	defer srv.Close()

	c := NewClient("", srv.URL, "")
	err := c.PushLine(context.Background(), LineMessage{To: "U123", Title: "Invite"})
	if err == nil {
		t.Fatal("expected failure to be reported")
	}
}

func TestPostWithoutURL(t *testing.T) {
	c := NewClient("", "", "")
	err := c.SendEmail(context.Background(), Email{To: "a@b.c"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestServerErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "")
	if err := c.SendEmail(context.Background(), Email{To: "a@b.c"}); err == nil {
		t.Fatal("expected error on 502")
	}
}
