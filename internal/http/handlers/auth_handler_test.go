package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"grivyzom/internal/config"
	"grivyzom/internal/http/handlers"
	"grivyzom/internal/repos"
	"grivyzom/internal/services"
)

func newTestApp(t *testing.T) (*fiber.App, *services.AuthService, *handlers.Deps) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	bus := EventBus.New()
	authSvc := services.NewAuthService(repos.NewUserRepo(db), bus, "test-secret")
	cfg := config.Config{CheckoutURL: "https://pay.test/checkout", StatusURL: "http://127.0.0.1:1/status"}
	deps := handlers.NewDeps(db, cfg, authSvc)
	if err := deps.Grovs.SubscribeAuth(bus); err != nil {
		t.Fatal(err)
	}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := authSvc.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})

	api := app.Group("/api/v1")
	api.Post("/auth/login", deps.AuthHandler.Login)
	api.Post("/auth/register", deps.AuthHandler.Register)
	api.Post("/auth/logout", deps.AuthHandler.Logout)
	api.Get("/auth/me", handlers.RequireUser(authSvc), deps.AuthHandler.Me)

	api.Get("/store/products", deps.StoreHandler.Products)
	api.Get("/cart", deps.CartHandler.View)
	api.Post("/cart/items", deps.CartHandler.Add)

	grovs := api.Group("/grovs", handlers.RequireUser(authSvc))
	grovs.Get("/balance", deps.GrovsHandler.Balance)
	grovs.Post("/daily", deps.GrovsHandler.ClaimDaily)

	admin := api.Group("/admin", handlers.RequireStaff(authSvc))
	admin.Get("/users", deps.AdminHandler.ListUsers)

	app.Get("/perfil", handlers.RequireUser(authSvc), func(c *fiber.Ctx) error {
		return c.SendString("perfil")
	})
	return app, authSvc, deps
}

func postJSON(t *testing.T, app *fiber.App, path, body string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func cookieNamed(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name && c.Value != "" {
			return c
		}
	}
	return nil
}

func decodeEnvelope(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return out
}

func TestLoginSuccessAndFailure(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp := postJSON(t, app, "/api/v1/auth/login", `{"email":"steve@grivyzom.test","password":"wrong"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad creds: status = %d, want 401", resp.StatusCode)
	}

	resp = postJSON(t, app, "/api/v1/auth/login", `{"email":"steve@grivyzom.test","password":"Passw0rd!"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: status = %d, want 200", resp.StatusCode)
	}
	if cookieNamed(resp, "sid") == nil {
		t.Fatal("login must set the sid cookie")
	}
	env := decodeEnvelope(t, resp)
	if env["success"] != true {
		t.Fatalf("envelope: %+v", env)
	}
	data, _ := env["data"].(map[string]any)
	if data["username"] != "Steve" {
		t.Fatalf("user snapshot: %+v", data)
	}
	if _, ok := data["grovs_balance"]; !ok {
		t.Fatal("login snapshot must carry the grovs mirror fields")
	}
}

func TestLoginAcceptsUsernameIdentifier(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp := postJSON(t, app, "/api/v1/auth/login", `{"email":"Steve","password":"Passw0rd!"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("username login: status = %d, want 200", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	data, _ := env["data"].(map[string]any)
	if data["email"] != "steve@grivyzom.test" {
		t.Fatalf("user snapshot: %+v", data)
	}

	resp = postJSON(t, app, "/api/v1/auth/login", `{"email":"not a user!","password":"Passw0rd!"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("malformed identifier: status = %d, want 401", resp.StatusCode)
	}
}

func TestGuardsRedirectPagesAndRejectAPI(t *testing.T) {
	app, _, _ := newTestApp(t)

	// API path: JSON 401, no redirect.
	req := httptest.NewRequest("GET", "/api/v1/grovs/balance", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("api guard: status = %d, want 401", resp.StatusCode)
	}

	// Page path: redirect to login carrying the return URL.
	req = httptest.NewRequest("GET", "/perfil", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("page guard: status = %d, want 302", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if !strings.HasPrefix(loc, "/login?returnUrl=") || !strings.Contains(loc, "perfil") {
		t.Fatalf("redirect location = %q", loc)
	}
}

func TestStaffGuardForbidsPlayers(t *testing.T) {
	app, _, _ := newTestApp(t)

	login := postJSON(t, app, "/api/v1/auth/login", `{"email":"steve@grivyzom.test","password":"Passw0rd!"}`)
	sid := cookieNamed(login, "sid")
	if sid == nil {
		t.Fatal("no sid")
	}

	req := httptest.NewRequest("GET", "/api/v1/admin/users", nil)
	req.AddCookie(sid)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 for a PLAYER", resp.StatusCode)
	}

	// The admin account passes.
	login = postJSON(t, app, "/api/v1/auth/login", `{"email":"admin@grivyzom.test","password":"Passw0rd!"}`)
	adminSid := cookieNamed(login, "sid")
	req = httptest.NewRequest("GET", "/api/v1/admin/users", nil)
	req.AddCookie(adminSid)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 for ADMIN", resp.StatusCode)
	}
}

func TestLogoutUnbindsSession(t *testing.T) {
	app, _, _ := newTestApp(t)

	login := postJSON(t, app, "/api/v1/auth/login", `{"email":"steve@grivyzom.test","password":"Passw0rd!"}`)
	sid := cookieNamed(login, "sid")
	if sid == nil {
		t.Fatal("no sid")
	}

	resp := postJSON(t, app, "/api/v1/auth/logout", `{}`, sid)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: status = %d", resp.StatusCode)
	}

	req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	req.AddCookie(sid)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("stale session: status = %d, want 401", resp.StatusCode)
	}
}

func TestLoginPublishesStreakDay(t *testing.T) {
	app, _, _ := newTestApp(t)

	login := postJSON(t, app, "/api/v1/auth/login", `{"email":"steve@grivyzom.test","password":"Passw0rd!"}`)
	sid := cookieNamed(login, "sid")
	if sid == nil {
		t.Fatal("no sid")
	}
	// EventBus publishes synchronously, so the streak row is visible now.
	req := httptest.NewRequest("GET", "/api/v1/grovs/balance", nil)
	req.AddCookie(sid)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("balance: status = %d", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	data, _ := env["data"].(map[string]any)
	if data["daily_reward_available"] != true {
		t.Fatalf("fresh account should have the daily reward available: %+v", data)
	}
}

func TestRateLimitedLoginRoute(t *testing.T) {
	app := fiber.New()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	authSvc := services.NewAuthService(repos.NewUserRepo(db), EventBus.New(), "test-secret")
	authH := &handlers.AuthHandler{Auth: authSvc}
	app.Post("/api/v1/auth/login", limiter.New(limiter.Config{Max: 2, Expiration: time.Minute}), authH.Login)

	for i := 0; i < 2; i++ {
		resp := postJSON(t, app, "/api/v1/auth/login", `{"email":"steve@grivyzom.test","password":"wrong"}`)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d", i, resp.StatusCode)
		}
	}
	resp := postJSON(t, app, "/api/v1/auth/login", `{"email":"steve@grivyzom.test","password":"wrong"}`)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429 after the limit", resp.StatusCode)
	}
}
