package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"bookineo/internal/apperr"
	applog "bookineo/internal/log"
	"bookineo/internal/services"
)

const rememberCookie = "bookineo-remember-me"

type AuthHandler struct {
	Auth *services.AuthService
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		setSIDCookie(c, sid, services.SessionTTL)
	}
	return sid
}

func setSIDCookie(c *fiber.Ctx, sid string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false, // set true behind HTTPS
		Expires:  time.Now().Add(ttl),
	})
}

func setRememberCookie(c *fiber.Ctx, enabled bool) {
	ck := &fiber.Cookie{
		Name:     rememberCookie,
		Value:    "1",
		Path:     "/",
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(services.RememberSessionTTL),
	}
	if !enabled {
		ck.Value = ""
		ck.Expires = time.Now().Add(-time.Hour)
	}
	c.Cookie(ck)
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var in services.SignupInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.Validation("invalid request body", nil)
	}
	u, err := h.Auth.Signup(in)
	if err != nil {
		applog.Security(c, "auth.signup.fail", map[string]any{"email": in.Email})
		return err
	}
	// Sign-up logs the user in right away.
	sid := ensureSID(c)
	if _, err := h.Auth.Login(sid, u.Email, in.Password, false); err != nil {
		return err
	}
	applog.Audit(c, "auth.signup", map[string]any{"user_id": u.ID})
	return created(c, u)
}

type loginInput struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in loginInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.Validation("invalid request body", nil)
	}
	sid := ensureSID(c)
	u, err := h.Auth.Login(sid, in.Email, in.Password, in.RememberMe)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": in.Email})
		return err
	}
	ttl := services.SessionTTL
	if in.RememberMe {
		ttl = services.RememberSessionTTL
	}
	setSIDCookie(c, sid, ttl)
	setRememberCookie(c, in.RememberMe)
	applog.Audit(c, "auth.login.success", map[string]any{"user_id": u.ID})
	return ok(c, u)
}

type rememberInput struct {
	Enabled bool `json:"enabled"`
}

// RememberMe toggles the extended session lifetime on the current session.
func (h *AuthHandler) RememberMe(c *fiber.Ctx) error {
	var in rememberInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.Validation("invalid request body", nil)
	}
	sid := c.Cookies("sid")
	if err := h.Auth.SetRememberMe(sid, in.Enabled); err != nil {
		return err
	}
	ttl := services.SessionTTL
	if in.Enabled {
		ttl = services.RememberSessionTTL
	}
	setSIDCookie(c, sid, ttl)
	setRememberCookie(c, in.Enabled)
	applog.Audit(c, "auth.remember_me", map[string]any{"enabled": in.Enabled})
	return okMessage(c, "remember-me updated")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if sid := c.Cookies("sid"); sid != "" {
		_ = h.Auth.Logout(sid)
	}
	setSIDCookie(c, "", -time.Hour)
	setRememberCookie(c, false)
	applog.Audit(c, "auth.logout", nil)
	return okMessage(c, "logged out")
}
