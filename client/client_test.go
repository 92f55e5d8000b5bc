package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/sparkauth/app"
	"github.com/tech-arch1tect/sparkauth/services/users"
	"github.com/tech-arch1tect/sparkauth/testutils"
)

type harness struct {
	app    *app.App
	outbox *testutils.Outbox
	url    string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := testutils.GetTestConfig()
	// httptest serves plain http; a cookie jar never replays Secure cookies there.
	cfg.Cookie.Secure = false
	cfg.Cookie.SameSite = "lax"

	outbox := &testutils.Outbox{}
	a, err := app.NewApp().
		WithConfig(cfg).
		WithMailClient(outbox).
		WithoutListener().
		Build()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.Start(ctx))
	t.Cleanup(func() { _ = a.Stop(ctx) })

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)

	return &harness{app: a, outbox: outbox, url: srv.URL}
}

func (h *harness) client(t *testing.T) *Client {
	t.Helper()
	c, err := New(h.url)
	require.NoError(t, err)
	return c
}

func (h *harness) promote(t *testing.T, email string, role users.Role) {
	t.Helper()
	ctx := context.Background()
	store := h.app.Stores().Users

	user, err := store.FindByEmail(ctx, email)
	require.NoError(t, err)
	user.Role = role
	require.NoError(t, store.Save(ctx, user))
}

func TestClient_SessionLifecycle(t *testing.T) {
	h := newHarness(t)
	c := h.client(t)
	ctx := context.Background()

	loggedIn, err := c.LoginStatus(ctx)
	require.NoError(t, err)
	assert.False(t, loggedIn)

	user, err := c.Register(ctx, RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "user", user.Role)
	assert.Nil(t, c.State().User, "register leaves local state alone")

	loggedIn, err = c.LoginStatus(ctx)
	require.NoError(t, err)
	assert.True(t, loggedIn, "register starts a session")

	require.NoError(t, c.Logout(ctx))
	loggedIn, err = c.LoginStatus(ctx)
	require.NoError(t, err)
	assert.False(t, loggedIn)

	_, err = c.Login(ctx, "ada@example.com", "wrong-password")
	assert.True(t, IsStatus(err, http.StatusBadRequest))

	me, err := c.Login(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, me.ID)
	require.NotNil(t, c.State().User)
	assert.Equal(t, "Ada", c.State().User.Name)

	require.NoError(t, c.Logout(ctx))
	assert.Nil(t, c.State().User)

	_, err = c.GetUser(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Not authorized, please login!", apiErr.Message)
}

func TestClient_Profile(t *testing.T) {
	h := newHarness(t)
	c := h.client(t)
	ctx := context.Background()

	_, err := c.Register(ctx, RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	updated, err := c.UpdateUser(ctx, ProfileUpdate{Bio: "Analyst", Photo: "https://example.org/ada.png"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.Name)
	assert.Equal(t, "Analyst", updated.Bio)
	assert.Equal(t, "https://example.org/ada.png", c.State().User.Photo)

	require.NoError(t, c.ChangePassword(ctx, "secret1", "secret2"))
	err = c.ChangePassword(ctx, "secret1", "secret3")
	assert.True(t, IsStatus(err, http.StatusBadRequest))

	require.NoError(t, c.Logout(ctx))
	_, err = c.Login(ctx, "ada@example.com", "secret2")
	assert.NoError(t, err)
}

func TestClient_EmailVerification(t *testing.T) {
	h := newHarness(t)
	c := h.client(t)
	ctx := context.Background()

	_, err := c.Login(ctx, "nobody@example.com", "secret1")
	assert.True(t, IsStatus(err, http.StatusNotFound))

	_, err = c.Register(ctx, RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = c.GetUser(ctx)
	require.NoError(t, err)

	require.NoError(t, c.RequestEmailVerification(ctx))
	token := h.outbox.LastToken("verify-email")
	require.NotEmpty(t, token)

	require.NoError(t, c.VerifyUser(ctx, token))
	assert.True(t, c.State().User.IsVerified, "verification refreshes the loaded user")

	err = c.VerifyUser(ctx, token)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Invalid or expired verification token", apiErr.Message)

	err = c.RequestEmailVerification(ctx)
	assert.True(t, IsStatus(err, http.StatusBadRequest))
}

func TestClient_PasswordReset(t *testing.T) {
	h := newHarness(t)
	c := h.client(t)
	ctx := context.Background()

	_, err := c.Register(ctx, RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, c.Logout(ctx))

	err = c.ForgotPassword(ctx, "nobody@example.com")
	assert.True(t, IsStatus(err, http.StatusNotFound))

	require.NoError(t, c.ForgotPassword(ctx, "ada@example.com"))
	token := h.outbox.LastToken("reset-password")
	require.NotEmpty(t, token)

	err = c.ResetPassword(ctx, token, "abc")
	assert.True(t, IsStatus(err, http.StatusBadRequest))

	require.NoError(t, c.ResetPassword(ctx, token, "new-secret"))
	err = c.ResetPassword(ctx, token, "other-secret")
	assert.True(t, IsStatus(err, http.StatusBadRequest), "reset tokens are single use")

	_, err = c.Login(ctx, "ada@example.com", "new-secret")
	assert.NoError(t, err)
}

func TestClient_AdminBootstrap(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	admin := h.client(t)
	_, err := admin.Register(ctx, RegisterRequest{Name: "Root", Email: "root@example.com", Password: "secret1"})
	require.NoError(t, err)

	member := h.client(t)
	victim, err := member.Register(ctx, RegisterRequest{Name: "Bob", Email: "bob@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = admin.GetAllUsers(ctx)
	assert.True(t, IsStatus(err, http.StatusForbidden))

	h.promote(t, "root@example.com", users.RoleAdmin)

	require.NoError(t, admin.Bootstrap(ctx))
	state := admin.State()
	require.NotNil(t, state.User)
	assert.True(t, state.User.IsAdmin())
	assert.Len(t, state.AllUsers, 2)
	assert.False(t, state.Loading)

	require.NoError(t, admin.DeleteUser(ctx, victim.ID))
	assert.Len(t, admin.State().AllUsers, 1)

	err = admin.DeleteUser(ctx, victim.ID)
	assert.True(t, IsStatus(err, http.StatusNotFound))

	_, err = member.GetUser(ctx)
	assert.True(t, IsStatus(err, http.StatusNotFound), "deleted user's session no longer resolves")
}

func TestClient_BootstrapWithoutSession(t *testing.T) {
	h := newHarness(t)
	c := h.client(t)

	require.NoError(t, c.Bootstrap(context.Background()))
	assert.Nil(t, c.State().User)
	assert.Empty(t, c.State().AllUsers)
}
