// app/echoServer/jwtx/user.go
package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/korteyrichard/dataking/model"
)

func UserIDFromContext(c echo.Context) (int64, error) {
	tok, ok := c.Get("user").(*jwt.Token)
	if !ok || tok == nil {
		return 0, errors.New("no jwt token in context")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid jwt claims")
	}

	if f, ok := claims["sub"].(float64); ok {
		return int64(f), nil
	}
	return 0, errors.New("sub missing in claims")
}

// RoleFromContext reads the role claim. Tokens with an unknown or missing
// role resolve to guest, never to a privileged role.
func RoleFromContext(c echo.Context) (model.Role, error) {
	tok, ok := c.Get("user").(*jwt.Token)
	if !ok || tok == nil {
		return model.RoleGuest, errors.New("no jwt token in context")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return model.RoleGuest, errors.New("invalid jwt claims")
	}

	s, _ := claims["role"].(string)
	role, ok := model.ParseRole(s)
	if !ok {
		return model.RoleGuest, errors.New("role missing in claims")
	}
	return role, nil
}
