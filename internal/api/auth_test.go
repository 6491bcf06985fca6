package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shelfmate/shelfmate/internal/api"
)

func TestLogin(t *testing.T) {
	var sent api.Credentials
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&sent)
		_, _ = w.Write([]byte(`{"token":"tok-9","expiresIn":7200}`))
	}))
	defer srv.Close()

	c := api.New(srv.URL, testSession(t, ""), nil)
	res, err := c.Login(context.Background(), api.Credentials{Username: "alex", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sent.Username != "alex" {
		t.Errorf("sent username = %q", sent.Username)
	}
	if res.Token != "tok-9" || res.ExpiresIn != 7200 {
		t.Errorf("result = %+v", res)
	}
}

func TestRegistrationValidate(t *testing.T) {
	errs := api.Registration{Username: "al", Email: "not-an-email", Password: "short"}.Validate()
	if len(errs) != 3 {
		t.Fatalf("expected 3 field errors, got %d: %v", len(errs), errs)
	}
	byPath := map[string]string{}
	for _, e := range errs {
		byPath[e.Path] = e.Message
	}
	for _, path := range []string{"username", "email", "password"} {
		if byPath[path] == "" {
			t.Errorf("missing field error for %q", path)
		}
	}

	if errs := (api.Registration{Username: "alex", Email: "a@example.com", Password: "longenough"}).Validate(); errs != nil {
		t.Errorf("valid registration produced errors: %v", errs)
	}
}

func TestProfileUpdateValidate_EmptyPasswordAllowed(t *testing.T) {
	u := api.ProfileUpdate{Username: "alex", Email: "a@example.com"}
	if errs := u.Validate(); errs != nil {
		t.Errorf("empty password must be allowed on update, got %v", errs)
	}
	u.Password = "short"
	if errs := u.Validate(); len(errs) != 1 || errs[0].Path != "password" {
		t.Errorf("short password must fail, got %v", errs)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"username":"alex","email":"a@example.com"}`))
		case http.MethodPatch, http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	c := api.New(srv.URL, testSession(t, "tok"), nil)
	p, err := c.GetProfile(context.Background())
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.Username != "alex" {
		t.Errorf("Username = %q", p.Username)
	}
	if err := c.UpdateProfile(context.Background(), api.ProfileUpdate{Username: "alex", Email: "a@example.com"}); err != nil {
		t.Errorf("UpdateProfile: %v", err)
	}
	if err := c.DeleteProfile(context.Background()); err != nil {
		t.Errorf("DeleteProfile: %v", err)
	}
}
