// app/echoServer/jwtx/identity.go
package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Legend373/Legend-Library-Ms/model"
)

// IdentityFromContext pulls the authenticated caller out of the echo-jwt token.
func IdentityFromContext(c echo.Context) (model.Identity, error) {
	tok, ok := c.Get("user").(*jwt.Token)
	if !ok || tok == nil {
		return model.Identity{}, errors.New("no jwt token in context")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return model.Identity{}, errors.New("invalid jwt claims")
	}

	sub, ok := claims["sub"].(float64)
	if !ok {
		return model.Identity{}, errors.New("sub missing in claims")
	}
	role, _ := claims["role"].(string)
	if role == "" {
		role = model.RoleMember
	}
	return model.Identity{UserID: int64(sub), Role: role}, nil
}
