package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/pos-stock-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/pos-stock-api/pkg/jwt"
)

func buildProtectedApp(allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"user_id":  apphttp.GetUserID(c),
				"role":     apphttp.GetRole(c),
				"shop_id":  apphttp.GetShopID(c),
				"is_owner": apphttp.GetOwnerID(c) != nil,
			})
		},
	)
	return app
}

func TestAuthMiddleware_CargaIdentidad(t *testing.T) {
	app := buildProtectedApp(pkgjwt.RoleSeller)
	tok, err := pkgjwt.Generate(testJWTSecret, testIssuer, pkgjwt.Principal{
		UserID: "u-1", Role: pkgjwt.RoleSeller, OwnerID: "o-1", ShopID: "s-1",
	}, 60)
	require.NoError(t, err)

	var body map[string]any
	resp := call(t, app, http.MethodGet, "/protected", "Bearer "+tok, nil, &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "u-1", body["user_id"])
	assert.Equal(t, pkgjwt.RoleSeller, body["role"])
	assert.Equal(t, "s-1", body["shop_id"])
	assert.Equal(t, true, body["is_owner"])
}

func TestAuthMiddleware_SinHeader(t *testing.T) {
	var body errorBody
	resp := call(t, buildProtectedApp(pkgjwt.RoleAdmin), http.MethodGet, "/protected", "", nil, &body)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", body.Code)
	assert.NotEmpty(t, body.MessageEn)
}

func TestAuthMiddleware_FormatoInvalido(t *testing.T) {
	var body errorBody
	resp := call(t, buildProtectedApp(pkgjwt.RoleAdmin), http.MethodGet, "/protected", "Token abc", nil, &body)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", body.Code)
}

func TestAuthMiddleware_TokenInvalido(t *testing.T) {
	resp := call(t, buildProtectedApp(pkgjwt.RoleAdmin), http.MethodGet, "/protected", "Bearer token.invalido.aqui", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireRole_Permitido(t *testing.T) {
	app := buildProtectedApp(pkgjwt.RoleAdmin, pkgjwt.RoleStockKeeper)
	resp := call(t, app, http.MethodGet, "/protected", tokenFor(t, pkgjwt.RoleStockKeeper), nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole_NoDistingueMayusculas(t *testing.T) {
	app := buildProtectedApp(pkgjwt.RoleManager)
	resp := call(t, app, http.MethodGet, "/protected", tokenFor(t, "manager"), nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole_Bloqueado(t *testing.T) {
	var body errorBody
	resp := call(t, buildProtectedApp(pkgjwt.RoleAdmin), http.MethodGet, "/protected", tokenFor(t, pkgjwt.RoleCashier), nil, &body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", body.Code)
}

func TestRequireRole_SinRolEnContexto(t *testing.T) {
	app := fiber.New()
	app.Get("/x", apphttp.RequireRole(pkgjwt.RoleAdmin), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
