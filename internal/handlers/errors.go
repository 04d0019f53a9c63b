package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/slugbase/slugbase/internal/models"
)

// apiError wraps echo.NewHTTPError with the error taxonomy the clients
// consume: validation, conflict, forbidden, not_found, unauthorized,
// internal.
func apiError(status int, errType, message string) *echo.HTTPError {
	return echo.NewHTTPError(status, echo.Map{"type": errType, "message": message})
}

func errValidation(message string) *echo.HTTPError {
	return apiError(http.StatusBadRequest, "validation", message)
}

func errConflict(message string) *echo.HTTPError {
	return apiError(http.StatusBadRequest, "conflict", message)
}

func errForbidden(message string) *echo.HTTPError {
	return apiError(http.StatusForbidden, "forbidden", message)
}

// errNotFound is returned both for absent ids and for rows that exist
// but fail the visibility predicate, so private items of other users
// are never disclosed.
func errNotFound(message string) *echo.HTTPError {
	return apiError(http.StatusNotFound, "not_found", message)
}

func errUnauthorized(message string) *echo.HTTPError {
	return apiError(http.StatusUnauthorized, "unauthorized", message)
}

func errInternal(err error) *echo.HTTPError {
	return apiError(http.StatusInternalServerError, "internal", err.Error())
}

// getClaimsFromContext returns the JWT claims stored by the auth
// middleware, or nil for unauthenticated requests.
func getClaimsFromContext(c echo.Context) *models.JwtCustomClaims {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return nil
	}
	return claims
}

func getUserIDFromContext(c echo.Context) uint {
	claims := getClaimsFromContext(c)
	if claims == nil {
		return 0
	}
	return claims.UserID
}
