package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles reconocidos por el servicio. Los tokens los emite el servicio de identidad.
const (
	RoleAdmin       = "Admin"
	RoleManager     = "Manager"
	RoleStockKeeper = "StockKeeper"
	RoleCashier     = "Cashier"
	RoleSeller      = "Seller"
)

// Claims incluye los claims estándar JWT más la identidad del actor.
// OwnerID delimita el alcance de SKU y proveedores; ShopID la tienda por defecto del actor.
type Claims struct {
	jwt.RegisteredClaims
	UserID  string `json:"user_id"`
	Role    string `json:"role"`
	OwnerID string `json:"owner_id,omitempty"`
	ShopID  string `json:"shop_id,omitempty"`
}

// Principal identidad extraída de un token válido.
type Principal struct {
	UserID  string
	Role    string
	OwnerID string
	ShopID  string
}

// Generate firma un token HS256 para p. Usado por herramientas y tests; el login no vive aquí.
func Generate(secret, issuer string, p Principal, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:  p.UserID,
		Role:    p.Role,
		OwnerID: p.OwnerID,
		ShopID:  p.ShopID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida firma y expiración y devuelve la identidad del token.
func Parse(secret, tokenString string) (Principal, error) {
	if secret == "" {
		return Principal{}, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Principal{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Principal{}, fmt.Errorf("claims inválidos")
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" || claims.Role == "" {
		return Principal{}, fmt.Errorf("jwt: token sin usuario o rol")
	}
	return Principal{
		UserID:  claims.UserID,
		Role:    claims.Role,
		OwnerID: claims.OwnerID,
		ShopID:  claims.ShopID,
	}, nil
}
