package pinblob

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Admin credential keys. They are looked up on every login.
const (
	AdminEmailKey    = "ADMIN_EMAIL"
	AdminPasswordKey = "ADMIN_PASSWORD"
)

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (a *App) handleAdminLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Envelope{Error: "Invalid request body"})
	}
	if !a.checkCredentials(req.Email, req.Password) {
		c.Logger().Warnf("failed admin login from %s", c.RealIP())
		return c.JSON(http.StatusUnauthorized, Envelope{Error: "Invalid credentials", Message: "Invalid credentials"})
	}
	if err := setAdminSession(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: "Login successful"})
}

// checkCredentials compares against the configured pair. An unset or empty
// configured value never matches, including an empty submission.
func (a *App) checkCredentials(email, password string) bool {
	wantEmail, _ := a.lookup(AdminEmailKey)
	wantPassword, _ := a.lookup(AdminPasswordKey)
	if wantEmail == "" || wantPassword == "" {
		return false
	}
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(wantEmail))
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(wantPassword))
	return emailOK&passwordOK == 1
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Envelope{Success: true})
}

// handleCheckAdmin is advisory; the gate re-checks the cookie on every
// protected request.
func handleCheckAdmin(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"isAdmin": IsAdmin(c)})
}

func (a *App) handleLoginPage(c echo.Context) error {
	if IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return Render(c, a.Views.Login(a.site()))
}
