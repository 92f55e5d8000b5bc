package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/sparkauth/middleware/authgate"
	"github.com/tech-arch1tect/sparkauth/middleware/ratelimit"
	"github.com/tech-arch1tect/sparkauth/openapi"
	"github.com/tech-arch1tect/sparkauth/services/account"
	"github.com/tech-arch1tect/sparkauth/services/users"
)

const (
	APIPrefix    = "/api/v1"
	cookieScheme = "sessionCookie"
)

type route struct {
	method  string
	path    string
	handler echo.HandlerFunc
	guard   []echo.MiddlewareFunc
	doc     func(*openapi.RouteBuilder)
}

// Routes registers the account API on g and documents each route in api.
func (h *Handler) Routes(g *echo.Group, gate *authgate.Gate, limits *ratelimit.Limits, api *openapi.OpenAPI) {
	api.CookieAuth(cookieScheme, h.sessions.CookieName(), "Session JWT issued at register or login").
		Tag("auth", "Registration, login and sessions").
		Tag("user", "Profile and password management").
		Tag("admin", "User administration")

	protected := gate.Protected()

	for _, r := range []route{
		{http.MethodPost, "/register", h.Register, []echo.MiddlewareFunc{limits.Register}, func(rb *openapi.RouteBuilder) {
			rb.Summary("Create an account and start a session").Tags("auth").
				Body(account.RegisterInput{}, "New account").
				Response(http.StatusCreated, SessionResponse{}, "Account created").
				Response(http.StatusBadRequest, MessageResponse{}, "Missing fields, short password or existing user")
		}},
		{http.MethodPost, "/login", h.Login, []echo.MiddlewareFunc{limits.Login}, func(rb *openapi.RouteBuilder) {
			rb.Summary("Start a session").Tags("auth").
				Body(account.LoginInput{}, "Credentials").
				Response(http.StatusOK, SessionResponse{}, "Logged in").
				Response(http.StatusBadRequest, MessageResponse{}, "Invalid credentials").
				Response(http.StatusNotFound, MessageResponse{}, "Unknown email")
		}},
		{http.MethodGet, "/logout", h.Logout, nil, func(rb *openapi.RouteBuilder) {
			rb.Summary("Clear the session cookie").Tags("auth").
				Response(http.StatusOK, MessageResponse{}, "Logged out")
		}},
		{http.MethodGet, "/login-status", h.LoginStatus, nil, func(rb *openapi.RouteBuilder) {
			rb.Summary("Report whether the session cookie is valid").Tags("auth").
				Response(http.StatusOK, true, "Valid session").
				Response(http.StatusUnauthorized, false, "Missing or invalid session")
		}},
		{http.MethodGet, "/user", h.GetUser, []echo.MiddlewareFunc{protected}, func(rb *openapi.RouteBuilder) {
			rb.Summary("Current user's profile").Tags("user").Security(cookieScheme).
				Response(http.StatusOK, users.User{}, "Profile")
		}},
		{http.MethodPatch, "/user", h.UpdateUser, []echo.MiddlewareFunc{protected}, func(rb *openapi.RouteBuilder) {
			rb.Summary("Update name, bio or photo").Tags("user").Security(cookieScheme).
				Body(account.ProfileInput{}, "Fields to replace; empty values are ignored").
				Response(http.StatusOK, users.User{}, "Updated profile")
		}},
		{http.MethodPost, "/verify-email", h.RequestEmailVerification, []echo.MiddlewareFunc{protected}, func(rb *openapi.RouteBuilder) {
			rb.Summary("Email a verification link").Tags("user").Security(cookieScheme).
				Response(http.StatusOK, MessageResponse{}, "Email sent").
				Response(http.StatusBadRequest, MessageResponse{}, "Already verified").
				Response(http.StatusInternalServerError, MessageResponse{}, "Email could not be sent")
		}},
		{http.MethodPost, "/verify-user/:verificationToken", h.VerifyUser, nil, func(rb *openapi.RouteBuilder) {
			rb.Summary("Consume a verification token").Tags("user").
				PathParam("verificationToken", "Token from the verification email").
				Response(http.StatusOK, MessageResponse{}, "User verified").
				Response(http.StatusBadRequest, MessageResponse{}, "Invalid or expired token")
		}},
		{http.MethodPost, "/forgot-password", h.ForgotPassword, []echo.MiddlewareFunc{limits.ForgotPassword}, func(rb *openapi.RouteBuilder) {
			rb.Summary("Email a password reset link").Tags("user").
				Body(account.ForgotPasswordInput{}, "Account email").
				Response(http.StatusOK, MessageResponse{}, "Email sent").
				Response(http.StatusNotFound, MessageResponse{}, "Unknown email")
		}},
		{http.MethodPost, "/reset-password/:resetPasswordToken", h.ResetPassword, nil, func(rb *openapi.RouteBuilder) {
			rb.Summary("Set a new password with a reset token").Tags("user").
				PathParam("resetPasswordToken", "Token from the reset email").
				Body(account.ResetPasswordInput{}, "New password").
				Response(http.StatusOK, MessageResponse{}, "Password reset successfully").
				Response(http.StatusBadRequest, MessageResponse{}, "Invalid or expired token")
		}},
		{http.MethodPatch, "/change-password", h.ChangePassword, []echo.MiddlewareFunc{protected}, func(rb *openapi.RouteBuilder) {
			rb.Summary("Change password with the current one").Tags("user").Security(cookieScheme).
				Body(account.ChangePasswordInput{}, "Current and new password").
				Response(http.StatusOK, MessageResponse{}, "Password saved successfully").
				Response(http.StatusBadRequest, MessageResponse{}, "Invalid password")
		}},
		{http.MethodGet, "/admin/users", h.ListUsers, []echo.MiddlewareFunc{gate.AdminOnly()}, func(rb *openapi.RouteBuilder) {
			rb.Summary("List all users").Tags("admin").Security(cookieScheme).
				Response(http.StatusOK, []users.User{}, "Users").
				Response(http.StatusForbidden, MessageResponse{}, "Only admins allowed")
		}},
		{http.MethodDelete, "/admin/users/:id", h.DeleteUser, []echo.MiddlewareFunc{gate.AdminOnly()}, func(rb *openapi.RouteBuilder) {
			rb.Summary("Delete a user").Tags("admin").Security(cookieScheme).
				PathParam("id", "User id").
				Response(http.StatusOK, MessageResponse{}, "User deleted successfully").
				Response(http.StatusNotFound, MessageResponse{}, "User not found")
		}},
		{http.MethodGet, "/creator/ping", h.CreatorPing, []echo.MiddlewareFunc{gate.CreatorOnly()}, func(rb *openapi.RouteBuilder) {
			rb.Summary("Check creator access").Tags("admin").Security(cookieScheme).
				Response(http.StatusOK, MessageResponse{}, "Creator access granted").
				Response(http.StatusForbidden, MessageResponse{}, "Only creator allowed")
		}},
	} {
		g.Add(r.method, r.path, r.handler, r.guard...)

		rb := api.Document(r.method, APIPrefix+r.path)
		r.doc(rb)
		rb.Build()
	}

	g.GET("/openapi.json", api.JSONHandler())
	g.GET("/openapi.yaml", api.YAMLHandler())
}
