package jwt

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

func (s *Service) sessionCookie(value string, maxAge int) *http.Cookie {
	cookie := &http.Cookie{
		Name:     s.config.Cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.config.Cookie.Secure,
		SameSite: parseSameSite(s.config.Cookie.SameSite),
	}
	if maxAge > 0 {
		cookie.Expires = s.now().Add(time.Duration(maxAge) * time.Second)
	} else {
		cookie.Expires = time.Unix(0, 0)
	}
	return cookie
}

func (s *Service) SetSessionCookie(c echo.Context, token string) {
	c.SetCookie(s.sessionCookie(token, int(s.config.JWT.Expiry.Seconds())))
}

// ClearSessionCookie overwrites the session cookie with an expired one
// carrying the same attributes, so browsers drop it.
func (s *Service) ClearSessionCookie(c echo.Context) {
	c.SetCookie(s.sessionCookie("", -1))
}

// SessionToken reads the session cookie. An absent or empty cookie yields "".
func (s *Service) SessionToken(c echo.Context) string {
	cookie, err := c.Cookie(s.config.Cookie.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (s *Service) CookieName() string {
	return s.config.Cookie.Name
}

func parseSameSite(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	default:
		return http.SameSiteNoneMode
	}
}
