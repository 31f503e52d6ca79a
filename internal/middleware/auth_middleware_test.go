package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"perfume-pos/internal/model"
	"perfume-pos/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubUsers map[uuid.UUID]*model.User

func (s stubUsers) FindByEmail(context.Context, string) (*model.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s stubUsers) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s stubUsers) FindAll(context.Context) ([]model.User, error) { return nil, nil }

func (s stubUsers) Create(context.Context, *model.User) error { return nil }

func (s stubUsers) Update(context.Context, *model.User) error { return nil }

func (s stubUsers) UpdatePassword(context.Context, uuid.UUID, string) error { return nil }

func newUser(role string, active bool) *model.User {
	u := &model.User{Email: role + "@shop.test", Role: role, IsActive: active}
	u.ID = uuid.New()
	return u
}

func setup(t *testing.T) (*fiber.App, *jwt.Manager, stubUsers) {
	t.Helper()
	tokens := jwt.NewManager("secret", time.Hour)
	users := stubUsers{}

	app := fiber.New()
	protected := app.Group("", RequireAuth(tokens, users))
	protected.Get("/sales", RequirePrivilege(model.PrivSaleView), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("user_id").(string))
	})
	protected.Get("/stats", RequirePrivilege(model.PrivStatsView), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	return app, tokens, users
}

func call(t *testing.T, app *fiber.App, path, auth string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func tokenFor(t *testing.T, tokens *jwt.Manager, u *model.User) string {
	t.Helper()
	tok, err := tokens.GenerateToken(u.ID, u.Email, u.FullName, u.Role, u.Privileges())
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestRequireAuth(t *testing.T) {
	app, tokens, users := setup(t)
	cashier := newUser(model.RoleCashier, true)
	gone := newUser(model.RoleCashier, false)
	users[cashier.ID] = cashier
	users[gone.ID] = gone

	assert.Equal(t, http.StatusUnauthorized, call(t, app, "/sales", ""))
	assert.Equal(t, http.StatusUnauthorized, call(t, app, "/sales", "Token abc"))
	assert.Equal(t, http.StatusUnauthorized, call(t, app, "/sales", "Bearer not-a-jwt"))
	assert.Equal(t, http.StatusUnauthorized, call(t, app, "/sales", tokenFor(t, tokens, gone)))
	assert.Equal(t, http.StatusUnauthorized, call(t, app, "/sales", tokenFor(t, tokens, newUser(model.RoleOwner, true))))
	assert.Equal(t, http.StatusOK, call(t, app, "/sales", tokenFor(t, tokens, cashier)))
}

func TestRequirePrivilege(t *testing.T) {
	app, tokens, users := setup(t)
	cashier := newUser(model.RoleCashier, true)
	owner := newUser(model.RoleOwner, true)
	users[cashier.ID] = cashier
	users[owner.ID] = owner

	assert.Equal(t, http.StatusForbidden, call(t, app, "/stats", tokenFor(t, tokens, cashier)))
	assert.Equal(t, http.StatusOK, call(t, app, "/stats", tokenFor(t, tokens, owner)))
}
