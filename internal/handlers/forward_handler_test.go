package handlers_test

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/slugbase/slugbase/internal/handlers"
	"github.com/slugbase/slugbase/internal/models"
	"github.com/slugbase/slugbase/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForward_RedirectsAndCountsAccess(t *testing.T) {
	db := setupDB(t)
	h := handlers.NewForwardHandler(repositories.NewGormBookmarkRepository(db))
	e := echo.New()

	alice := createUser(t, db, "alice")
	slug := "docs"
	bookmark := &models.Bookmark{
		UserID: alice.ID, Title: "Docs", URL: "https://example.com/docs",
		Slug: &slug, ForwardingEnabled: true,
	}
	require.NoError(t, db.Create(bookmark).Error)

	c, rec := newContext(e, http.MethodGet, "/alice-key/docs", "", 0)
	c.SetParamNames("userKey", "slug")
	c.SetParamValues("alice-key", "docs")
	require.NoError(t, h.Forward(c))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://example.com/docs", rec.Header().Get(echo.HeaderLocation))

	var reloaded models.Bookmark
	require.NoError(t, db.First(&reloaded, bookmark.ID).Error)
	assert.Equal(t, int64(1), reloaded.AccessCount)
	assert.NotNil(t, reloaded.LastAccessedAt)
}

func TestForward_DisabledOrUnknownIsNotFound(t *testing.T) {
	db := setupDB(t)
	h := handlers.NewForwardHandler(repositories.NewGormBookmarkRepository(db))
	e := echo.New()

	alice := createUser(t, db, "alice")
	slug := "off"
	require.NoError(t, db.Create(&models.Bookmark{
		UserID: alice.ID, Title: "Off", URL: "https://example.com",
		Slug: &slug, ForwardingEnabled: false,
	}).Error)

	cases := []struct {
		name    string
		userKey string
		slug    string
	}{
		{"forwarding disabled", "alice-key", "off"},
		{"unknown slug", "alice-key", "nope"},
		{"unknown user key", "nobody-key", "off"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newContext(e, http.MethodGet, "/"+tc.userKey+"/"+tc.slug, "", 0)
			c.SetParamNames("userKey", "slug")
			c.SetParamValues(tc.userKey, tc.slug)
			err := h.Forward(c)
			require.Error(t, err)
			assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
		})
	}
}
