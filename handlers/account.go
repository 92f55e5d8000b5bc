package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/sparkauth/middleware/authgate"
	"github.com/tech-arch1tect/sparkauth/services/account"
)

func (h *Handler) Register(c echo.Context) error {
	var in account.RegisterInput
	if err := bind(c, &in); err != nil {
		return err
	}

	user, token, err := h.accounts.Register(c.Request().Context(), in)
	if err != nil {
		return fail(c, err)
	}

	h.sessions.SetSessionCookie(c, token)
	return c.JSON(http.StatusCreated, SessionResponse{User: user, Token: token})
}

func (h *Handler) Login(c echo.Context) error {
	var in account.LoginInput
	if err := bind(c, &in); err != nil {
		return err
	}

	user, token, err := h.accounts.Login(c.Request().Context(), in)
	if err != nil {
		return fail(c, err)
	}

	h.sessions.SetSessionCookie(c, token)
	return c.JSON(http.StatusOK, SessionResponse{User: user, Token: token})
}

func (h *Handler) Logout(c echo.Context) error {
	h.sessions.ClearSessionCookie(c)
	return message(c, http.StatusOK, "User logged out")
}

// LoginStatus answers with a bare JSON boolean once a cookie is present.
func (h *Handler) LoginStatus(c echo.Context) error {
	token := h.sessions.SessionToken(c)
	if token == "" {
		return message(c, http.StatusUnauthorized, "Not authorized, please login")
	}

	if _, err := h.sessions.Verify(token); err != nil {
		return c.JSON(http.StatusUnauthorized, false)
	}
	return c.JSON(http.StatusOK, true)
}

func (h *Handler) GetUser(c echo.Context) error {
	current := authgate.CurrentUser(c)

	user, err := h.accounts.Profile(c.Request().Context(), current.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateUser(c echo.Context) error {
	var in account.ProfileInput
	if err := bind(c, &in); err != nil {
		return err
	}

	user, err := h.accounts.UpdateProfile(c.Request().Context(), authgate.CurrentUser(c).ID, in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) RequestEmailVerification(c echo.Context) error {
	if err := h.accounts.RequestVerification(c.Request().Context(), authgate.CurrentUser(c)); err != nil {
		return fail(c, err)
	}
	return message(c, http.StatusOK, "Email sent")
}

func (h *Handler) VerifyUser(c echo.Context) error {
	if err := h.accounts.VerifyEmail(c.Request().Context(), c.Param("verificationToken")); err != nil {
		return fail(c, err)
	}
	return message(c, http.StatusOK, "User verified")
}

func (h *Handler) ForgotPassword(c echo.Context) error {
	var in account.ForgotPasswordInput
	if err := bind(c, &in); err != nil {
		return err
	}

	if err := h.accounts.ForgotPassword(c.Request().Context(), in); err != nil {
		return fail(c, err)
	}
	return message(c, http.StatusOK, "Email sent")
}

func (h *Handler) ResetPassword(c echo.Context) error {
	var in account.ResetPasswordInput
	if err := bind(c, &in); err != nil {
		return err
	}

	if err := h.accounts.ResetPassword(c.Request().Context(), c.Param("resetPasswordToken"), in); err != nil {
		return fail(c, err)
	}
	return message(c, http.StatusOK, "Password reset successfully")
}

func (h *Handler) ChangePassword(c echo.Context) error {
	var in account.ChangePasswordInput
	if err := bind(c, &in); err != nil {
		return err
	}

	if err := h.accounts.ChangePassword(c.Request().Context(), authgate.CurrentUser(c).ID, in); err != nil {
		return fail(c, err)
	}
	return message(c, http.StatusOK, "Password saved successfully")
}
