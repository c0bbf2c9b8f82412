package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"bookineo/internal/config"
	"bookineo/internal/http/handlers"
	"bookineo/internal/repos"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	handlers.Register(app, handlers.NewDeps(db, config.Config{}))
	return app
}

func jsonReq(method, target, body string, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func decodeEnvelope(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("not a JSON envelope: %v (%s)", err, b)
	}
	return out
}

func cookieValue(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func TestSignup_PasswordPolicyFieldError(t *testing.T) {
	app := newTestApp(t)

	// password lacks an uppercase letter
	resp, err := app.Test(jsonReq("POST", "/api/auth/signup",
		`{"email":"new@bookineo.test","password":"passw0rd!","firstName":"New","lastName":"User"}`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	if env["success"] != false {
		t.Fatalf("bad envelope: %v", env)
	}
	errs, _ := env["errors"].(map[string]any)
	fields, _ := errs["fields"].(map[string]any)
	if _, ok := fields["password"]; !ok {
		t.Fatalf("want field error on password, got %v", env)
	}
}

func TestSignupLoginMeFlow(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(jsonReq("POST", "/api/auth/signup",
		`{"email":"carol@bookineo.test","password":"Secr3tPass","firstName":"Carol","lastName":"Levy"}`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("want 201, got %d", resp.StatusCode)
	}
	sid := cookieValue(resp, "sid")
	if sid == "" {
		t.Fatal("signup did not set a sid cookie")
	}

	// the session cookie authenticates /api/user/me
	resp, err = app.Test(jsonReq("GET", "/api/user/me", "", &http.Cookie{Name: "sid", Value: sid}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	data, _ := env["data"].(map[string]any)
	if data["email"] != "carol@bookineo.test" {
		t.Fatalf("bad /me payload: %v", env)
	}

	// no cookie -> 401 envelope
	resp, err = app.Test(jsonReq("GET", "/api/user/me", ""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", resp.StatusCode)
	}
}

func TestLogin_RememberMeCookie(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(jsonReq("POST", "/api/auth/login",
		`{"email":"alice@bookineo.test","password":"Passw0rd!","rememberMe":true}`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	if cookieValue(resp, "sid") == "" {
		t.Fatal("no sid cookie")
	}
	if cookieValue(resp, "bookineo-remember-me") != "1" {
		t.Fatal("remember-me flag cookie not set")
	}

	// bad credentials -> 401, no remember cookie value
	resp, err = app.Test(jsonReq("POST", "/api/auth/login",
		`{"email":"alice@bookineo.test","password":"WrongPass1"}`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", resp.StatusCode)
	}
}

func TestLogout_ClearsSession(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(jsonReq("POST", "/api/auth/login",
		`{"email":"bob@bookineo.test","password":"Passw0rd!"}`))
	if err != nil {
		t.Fatal(err)
	}
	sid := cookieValue(resp, "sid")

	resp, err = app.Test(jsonReq("POST", "/api/auth/logout", "", &http.Cookie{Name: "sid", Value: sid}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}

	// the old sid no longer authenticates
	resp, err = app.Test(jsonReq("GET", "/api/user/me", "", &http.Cookie{Name: "sid", Value: sid}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("want 401 after logout, got %d", resp.StatusCode)
	}
}

func TestAuthRateLimit_Envelope(t *testing.T) {
	app := newTestApp(t)
	bad := `{"email":"alice@bookineo.test","password":"WrongPass1"}`

	for i := 0; i < 10; i++ {
		resp, err := app.Test(jsonReq("POST", "/api/auth/login", bad))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("attempt %d: want 401, got %d", i, resp.StatusCode)
		}
	}

	// the 11th attempt within the window is throttled with the JSON envelope
	resp, err := app.Test(jsonReq("POST", "/api/auth/login", bad))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("want 429, got %d", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	if env["success"] != false {
		t.Fatalf("bad envelope: %v", env)
	}
	errs, _ := env["errors"].(map[string]any)
	if errs["code"] != "RATE_LIMITED" {
		t.Fatalf("want RATE_LIMITED code, got %v", env)
	}
}
