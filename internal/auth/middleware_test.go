package auth

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newGuardedApp(t *testing.T, permission string) (*fiber.App, *Verifier) {
	t.Helper()
	verifier, _ := newTestVerifier(t)
	mw := NewAuthMiddleware(verifier, zap.NewNop())

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var authErr *Error
			if errors.As(err, &authErr) {
				return c.Status(authErr.StatusCode()).SendString(authErr.Code + "|" + authErr.Message)
			}
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		},
	})
	app.Get("/guarded", mw.Require(permission), func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			return errors.New("claims missing")
		}
		return c.SendString(claims.Subject)
	})
	return app, verifier
}

func TestRequireStoresClaims(t *testing.T) {
	app, _ := newGuardedApp(t, PermissionGetDrinksDetail)
	key, _ := testRSAKeys(t)

	req := httptest.NewRequest("GET", "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+signRS256(t, key, testKid, baseClaims(PermissionGetDrinksDetail)))
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "auth0|barista", string(body))
}

func TestRequireRejects(t *testing.T) {
	app, _ := newGuardedApp(t, PermissionDeleteDrinks)
	key, _ := testRSAKeys(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/guarded", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "authorization_header_missing|no authorization header", string(body))

	req := httptest.NewRequest("GET", "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+signRS256(t, key, testKid, baseClaims(PermissionGetDrinksDetail)))
	resp, err = app.Test(req)
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "unauthorized|permission not found", string(body))
}

func TestClaimsFromContextEmpty(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		_, ok := ClaimsFromContext(c)
		if ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestPermissionsList(t *testing.T) {
	assert.ElementsMatch(t, []string{"get:drinks-detail", "post:drinks", "patch:drinks", "delete:drinks"}, Permissions())
}

func TestRequireUnknownPermissionPanics(t *testing.T) {
	mw := NewAuthMiddleware(nil, nil)
	assert.PanicsWithValue(t, `auth: unknown permission "get:drinks"`, func() { mw.Require("get:drinks") })
	for _, permission := range Permissions() {
		assert.NotPanics(t, func() { mw.Require(permission) })
	}
}

func TestRequireLogsFailureKind(t *testing.T) {
	verifier, _ := newTestVerifier(t)
	core, logs := observer.New(zap.DebugLevel)
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		if KindOf(err) != 0 {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}})
	app.Get("/guarded", NewAuthMiddleware(verifier, zap.New(core)).Require(PermissionPatchDrinks), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/guarded", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	entries := logs.FilterMessage("authorization failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(KindMissingHeader), fields["kind"])
	assert.Equal(t, PermissionPatchDrinks, fields["permission"])
	assert.Equal(t, "/guarded", fields["path"])
}
