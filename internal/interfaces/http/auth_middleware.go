package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-stock-api/internal/application/dto"
	"github.com/jhoicas/pos-stock-api/pkg/jwt"
)

// Locals keys para la identidad del actor en Fiber.
const (
	LocalUserID  = "user_id"
	LocalRole    = "role"
	LocalOwnerID = "owner_id"
	LocalShopID  = "shop_id"
)

// AuthMiddleware valida el Bearer Token JWT y carga la identidad en c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "MISSING_TOKEN", "Authorization header requerido", "Authorization header required")
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return unauthorized(c, "INVALID_TOKEN", "formato: Bearer <token>", "expected: Bearer <token>")
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return unauthorized(c, "MISSING_TOKEN", "token vacío", "empty token")
		}
		p, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return unauthorized(c, "INVALID_TOKEN", "token inválido o expirado", "invalid or expired token")
		}
		c.Locals(LocalUserID, p.UserID)
		c.Locals(LocalRole, p.Role)
		c.Locals(LocalOwnerID, p.OwnerID)
		c.Locals(LocalShopID, p.ShopID)
		return c.Next()
	}
}

// RequireRole permite continuar solo si el rol del token está entre roles.
// Debe usarse después de AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[strings.ToLower(r)] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return unauthorized(c, "MISSING_ROLE", "el token no incluye rol", "token has no role")
		}
		if _, ok := allowed[strings.ToLower(role)]; !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:      "FORBIDDEN",
				Message:   "el rol " + role + " no tiene acceso a este recurso",
				MessageEn: "role " + role + " cannot access this resource",
			})
		}
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, code, message, messageEn string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: code, Message: message, MessageEn: messageEn})
}

func localString(c *fiber.Ctx, key string) string {
	s, _ := c.Locals(key).(string)
	return s
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string { return localString(c, LocalUserID) }

// GetRole devuelve el rol del token.
func GetRole(c *fiber.Ctx) string { return localString(c, LocalRole) }

// GetShopID tienda por defecto del actor; vacío si el token no la incluye.
func GetShopID(c *fiber.Ctx) string { return localString(c, LocalShopID) }

// GetOwnerID alcance de catálogo del actor; nil = catálogo global.
func GetOwnerID(c *fiber.Ctx) *string {
	if s := localString(c, LocalOwnerID); s != "" {
		return &s
	}
	return nil
}
