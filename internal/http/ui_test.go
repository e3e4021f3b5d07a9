package http

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHomePage_Learner(t *testing.T) {
	t.Run("lists every module with progress", func(t *testing.T) {
		app := newTestApp(t)
		app.do(http.MethodGet, "/modules/module2?tab=content", nil)

		rr := app.do(http.MethodGet, "/", nil)

		require.Equal(t, http.StatusOK, rr.Code)
		body := rr.Body.String()
		assert.Contains(t, body, "Welcome, Learner!")
		assert.Contains(t, body, "Introduction to Web Accessibility")
		assert.Contains(t, body, "Accessible Navigation Design")
		assert.Contains(t, body, "Color Theory for Accessibility")
		assert.Contains(t, body, "Progress: 50%")
	})

	t.Run("filters by category", func(t *testing.T) {
		app := newTestApp(t)
		app.enableSpeech(t)

		rr := app.do(http.MethodGet, "/?category=design", nil)

		body := rr.Body.String()
		assert.NotContains(t, body, "Introduction to Web Accessibility")
		assert.Contains(t, body, "Accessible Navigation Design")
		assert.Equal(t, "Filtering by design category", app.speech.last())
	})

	t.Run("navigation is announced", func(t *testing.T) {
		app := newTestApp(t)
		app.enableSpeech(t)

		app.do(http.MethodGet, "/?nav=home", nil)
		assert.Equal(t, AnnounceHome, app.speech.last())

		app.do(http.MethodGet, "/?nav=modules", nil)
		assert.Equal(t, AnnounceModuleList, app.speech.last())
	})

	t.Run("plain visit is silent", func(t *testing.T) {
		app := newTestApp(t)
		app.enableSpeech(t)
		before := app.speech.count()

		app.do(http.MethodGet, "/", nil)

		assert.Equal(t, before, app.speech.count())
	})
}

func TestHomePage_Guest(t *testing.T) {
	t.Run("shows the landing page with the login form", func(t *testing.T) {
		app := newGuestApp(t)

		rr := app.do(http.MethodGet, "/", nil)

		require.Equal(t, http.StatusOK, rr.Code)
		body := rr.Body.String()
		assert.Contains(t, body, "Learning Accessible for Everyone")
		assert.Contains(t, body, `action="/login"`)
		assert.NotContains(t, body, "Start Learning")
	})

	t.Run("switching forms is announced", func(t *testing.T) {
		app := newGuestApp(t)
		app.enableSpeech(t)

		rr := app.do(http.MethodGet, "/?form=register&nav=form", nil)

		assert.Contains(t, rr.Body.String(), `action="/register"`)
		assert.Equal(t, AnnounceRegisterForm, app.speech.last())

		app.do(http.MethodGet, "/?form=login&nav=form", nil)
		assert.Equal(t, AnnounceLoginForm, app.speech.last())
	})

	t.Run("modules require login", func(t *testing.T) {
		app := newGuestApp(t)

		rr := app.do(http.MethodGet, "/modules/module1", nil)

		assert.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/?form=login&next=%2Fmodules%2Fmodule1", rr.Header().Get("Location"))
	})

	t.Run("settings are open to guests", func(t *testing.T) {
		app := newGuestApp(t)

		rr := app.do(http.MethodGet, "/settings", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestHomePage_RegisterThenLearn(t *testing.T) {
	app := newGuestApp(t)
	app.enableSpeech(t)

	rr := app.do(http.MethodPost, "/register", url.Values{
		"name":             {"Ada"},
		"email":            {"ada@example.com"},
		"password":         {"keyboard-navigation"},
		"confirm_password": {"keyboard-navigation"},
	})
	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	rr = app.do(http.MethodGet, "/", nil)
	body := rr.Body.String()
	assert.Contains(t, body, "Welcome, Ada!")
	assert.Contains(t, body, `class="avatar" aria-hidden="true">A<`)

	rr = app.do(http.MethodGet, "/modules/module1", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	app.do(http.MethodPost, "/logout", url.Values{})
	rr = app.do(http.MethodGet, "/modules/module1", nil)
	assert.Equal(t, http.StatusFound, rr.Code)
}

func TestHomePage_LoginErrorShown(t *testing.T) {
	app := newGuestApp(t)

	rr := app.do(http.MethodPost, "/login", url.Values{
		"email":    {"nobody@example.com"},
		"password": {"wrong-password-123"},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	rr = app.do(http.MethodGet, rr.Header().Get("Location"), nil)
	body := rr.Body.String()
	assert.Contains(t, body, `role="alert"`)
	assert.Contains(t, body, "nobody@example.com")
}
