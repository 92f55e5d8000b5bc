package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/sparkauth/services/users"
)

func (h *Handler) ListUsers(c echo.Context) error {
	all, err := h.accounts.ListUsers(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	if all == nil {
		all = []users.User{}
	}
	return c.JSON(http.StatusOK, all)
}

func (h *Handler) DeleteUser(c echo.Context) error {
	if err := h.accounts.DeleteUser(c.Request().Context(), c.Param("id")); err != nil {
		return fail(c, err)
	}
	return message(c, http.StatusOK, "User deleted successfully")
}

func (h *Handler) CreatorPing(c echo.Context) error {
	return message(c, http.StatusOK, "Creator access granted")
}
