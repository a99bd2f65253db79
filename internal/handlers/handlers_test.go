package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/revera/internal/auth"
	"github.com/jjenkins/revera/internal/catalog"
)

type fakeBackend struct {
	mu      sync.Mutex
	signIns []auth.SignInForm
	signUps []auth.SignUpForm
	resp    *auth.Response
	err     error
}

func (b *fakeBackend) SignIn(ctx context.Context, form auth.SignInForm) (*auth.Response, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.signIns = append(b.signIns, form)
	return b.resp, b.err
}

func (b *fakeBackend) SignUp(ctx context.Context, form auth.SignUpForm) (*auth.Response, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.signUps = append(b.signUps, form)
	return b.resp, b.err
}

func (b *fakeBackend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.signIns) + len(b.signUps)
}

type testApp struct {
	app      *fiber.App
	backend  *fakeBackend
	previews *auth.MemoryPreviews
	sessions *auth.Sessions
	cookie   string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	source, err := catalog.NewStaticSource(catalog.BuiltinListings())
	require.NoError(t, err)
	engine := catalog.NewEngine(source, nil)

	backend := &fakeBackend{resp: &auth.Response{Redirect: "/dashboard"}}
	previews := auth.NewMemoryPreviews()
	policy := auth.Policy{AllowedDomains: auth.NewDomains("yourcompany.com", "partner.org"), MaxImageBytes: 1 << 20}
	sessions := auth.NewSessions(func() *auth.Flow {
		return auth.NewFlow(policy, backend, previews)
	}, time.Hour)
	t.Cleanup(sessions.Stop)

	authHandlers := NewAuthHandlers(sessions, previews, auth.NewClient("http://auth.test", time.Second), []string{"yourcompany.com"}, 1<<20)

	app := fiber.New()
	Register(app, engine, authHandlers, nil)

	return &testApp{app: app, backend: backend, previews: previews, sessions: sessions}
}

func (a *testApp) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	if a.cookie != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: a.cookie})
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie && c.Value != "" {
			a.cookie = c.Value
		}
	}
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, string(body)
}

func (a *testApp) get(t *testing.T, target string) (*http.Response, string) {
	return a.do(t, httptest.NewRequest(http.MethodGet, target, nil))
}

func (a *testApp) postForm(t *testing.T, target string, form url.Values) (*http.Response, string) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(t, req)
}

func (a *testApp) postMultipart(t *testing.T, target string, form url.Values, filename string, data []byte) (*http.Response, string) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, vs := range form {
		for _, v := range vs {
			require.NoError(t, w.WriteField(k, v))
		}
	}
	if filename != "" {
		part, err := w.CreateFormFile("avatar", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return a.do(t, req)
}

func pngBytes(n int) []byte {
	b := []byte("\x89PNG\r\n\x1a\n")
	for len(b) < n {
		b = append(b, 0)
	}
	return b
}

func assertOrder(t *testing.T, body string, titles ...string) {
	t.Helper()
	last := -1
	for _, title := range titles {
		idx := strings.Index(body, title)
		require.NotEqual(t, -1, idx, "missing %q", title)
		assert.Greater(t, idx, last, "%q out of order", title)
		last = idx
	}
}

func TestBuyPageSortedByPrice(t *testing.T) {
	a := newTestApp(t)

	resp, body := a.get(t, "/buy?sort=price-low")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<!DOCTYPE html>")
	assertOrder(t, body,
		"BMW M8 Competition",
		"Aston Martin DB11",
		"Mercedes AMG GT R",
		"Porsche 911 Turbo S",
		"Ferrari 488 GTB",
		"Lamborghini Huracan EVO",
	)
	assert.Contains(t, body, "$185,000")
}

func TestBuyPagePartialSearch(t *testing.T) {
	a := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/buy?q=ferrari", nil)
	req.Header.Set("HX-Request", "true")
	resp, body := a.do(t, req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "<html")
	assert.Contains(t, body, "Ferrari 488 GTB")
	assert.NotContains(t, body, "Porsche")
	assert.Contains(t, body, "Showing 1 of 6 cars")
}

func TestBuyPageNoMatch(t *testing.T) {
	a := newTestApp(t)

	_, body := a.get(t, "/buy?q=bugatti")
	assert.Contains(t, body, "No cars match your search.")
}

func TestRentPagePriceRange(t *testing.T) {
	a := newTestApp(t)

	_, body := a.get(t, "/rent?priceRange=1000%2B&sort=price-high")
	assertOrder(t, body, "Ferrari F8 Spider", "Lamborghini Gallardo")
	assert.NotContains(t, body, "BMW M4 Convertible")
	assert.Contains(t, body, "$1,200/day")
}

func TestRentPageBookingSearch(t *testing.T) {
	a := newTestApp(t)

	_, body := a.get(t, "/rent?book=1&pickup=2025-06-01")
	assert.Contains(t, body, "Please select pickup and return dates.")
	assert.Contains(t, body, `name="pickup" value="2025-06-01"`)

	_, body = a.get(t, "/rent?book=1&pickup=2025-06-01&return=2025-06-08&duration=weekly&location=Miami")
	assert.Contains(t, body, "Found available cars in Miami.")
	assert.Contains(t, body, `<option value="weekly" selected>`)
	assert.Contains(t, body, "Aston Martin V8 Vantage")
	assert.Contains(t, body, "Lamborghini Gallardo")
	assert.NotContains(t, body, "BMW M4 Convertible")

	_, body = a.get(t, "/rent?pickup=2025-06-01&return=2025-06-08")
	assert.NotContains(t, body, "Found available cars")
	assert.Contains(t, body, "Showing 6 of 6 cars")

	_, body = a.get(t, "/buy?book=1")
	assert.NotContains(t, body, "Missing Information")
	assert.NotContains(t, body, `name="pickup"`)
}

func TestCarDetail(t *testing.T) {
	a := newTestApp(t)

	resp, body := a.get(t, "/cars/r2?mode=rent")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Aston Martin V8 Vantage")
	assert.Contains(t, body, "Rent now")

	resp, _ = a.get(t, "/cars/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRequestAction(t *testing.T) {
	a := newTestApp(t)

	resp, body := a.postForm(t, "/cars/b1/request?mode=buy", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Request received")

	resp, body = a.postForm(t, "/cars/b5/request?mode=buy", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "currently sold")

	resp, _ = a.postForm(t, "/cars/b1/request?mode=rent", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	a := newTestApp(t)

	resp, body := a.get(t, "/garage")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "/garage")
}

func TestHomeAndAbout(t *testing.T) {
	a := newTestApp(t)

	resp, body := a.get(t, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Featured")
	assert.Contains(t, body, "Porsche 911 Turbo S")

	resp, body = a.get(t, "/about")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<strong>12</strong> vehicles")
}

func TestContactForm(t *testing.T) {
	a := newTestApp(t)

	resp, body := a.postForm(t, "/contact", url.Values{"firstName": {"Ada"}, "email": {"not-an-email"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Last name is required.")
	assert.Contains(t, body, "Enter a valid email address.")

	resp, body = a.postForm(t, "/contact", url.Values{
		"firstName": {"Ada"},
		"lastName":  {"Lovelace"},
		"email":     {"ada@example.com"},
		"interest":  {"Renting a luxury car"},
		"message":   {"A weekend in Monaco"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Message sent")
}

func TestSignUpRejectsPersonalDomain(t *testing.T) {
	a := newTestApp(t)

	a.postForm(t, "/auth/mode", url.Values{"mode": {"signup"}})
	require.NotEmpty(t, a.cookie)

	resp, body := a.postForm(t, "/auth/signup", url.Values{
		"firstName": {"Ada"},
		"lastName":  {"Lovelace"},
		"email":     {"ada@gmail.com"},
		"password":  {"secret"},
		"terms":     {"on"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, auth.MsgOfficialSignUp)
	assert.Zero(t, a.backend.calls())
}

func TestSignInRedirects(t *testing.T) {
	a := newTestApp(t)

	resp, _ := a.postForm(t, "/auth/signin", url.Values{
		"email":    {"ada@yourcompany.com"},
		"password": {"secret"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
	assert.Equal(t, 1, a.backend.calls())
	assert.Zero(t, a.sessions.Len())
}

func TestSignInBackendFailure(t *testing.T) {
	a := newTestApp(t)
	a.backend.resp = nil
	a.backend.err = &auth.StatusError{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}

	resp, body := a.postForm(t, "/auth/signin", url.Values{
		"email":    {"ada@yourcompany.com"},
		"password": {"wrong"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Invalid credentials")
	assert.NotContains(t, body, "wrong")
}

func TestSellerSignUpWithImage(t *testing.T) {
	a := newTestApp(t)
	_, body := a.get(t, "/auth?mode=signup")
	assert.Contains(t, body, `name="formMode" value="signup"`)
	assert.Empty(t, a.cookie)

	fields := url.Values{
		"firstName": {"Ada"},
		"lastName":  {"Lovelace"},
		"email":     {"ada@partner.org"},
		"business":  {"Lovelace Motors"},
	}
	resp, _ := a.postForm(t, "/auth/role", url.Values{"role": {"seller"}, "formMode": {"signup"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, a.cookie)

	resp, body = a.postMultipart(t, "/auth/image", fields, "me.png", pngBytes(512))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "/auth/preview/")
	assert.Equal(t, 1, a.previews.Live())

	resp, body = a.postMultipart(t, "/auth/image", fields, "second.png", pngBytes(256))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, a.previews.Live())

	start := strings.Index(body, "/auth/preview/")
	handle := body[start+len("/auth/preview/") : start+len("/auth/preview/")+36]
	resp, _ = a.get(t, "/auth/preview/"+handle)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	fields.Set("password", "secret")
	fields.Set("terms", "on")
	resp, _ = a.postMultipart(t, "/auth/signup", fields, "", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	require.Len(t, a.backend.signUps, 1)
	seller, ok := a.backend.signUps[0].(auth.SellerSignUp)
	require.True(t, ok)
	require.NotNil(t, seller.Avatar)
	assert.Equal(t, "second.png", seller.Avatar.Filename)
	assert.Equal(t, "Lovelace Motors", seller.Business)
	assert.Zero(t, a.previews.Live())
}

func TestAttachRejectsUnsupportedType(t *testing.T) {
	a := newTestApp(t)
	a.postForm(t, "/auth/role", url.Values{"role": {"seller"}, "formMode": {"signup"}})

	resp, body := a.postMultipart(t, "/auth/image", nil, "notes.txt", []byte("plain text, not an image"))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Unsupported image")
	assert.Zero(t, a.previews.Live())
}

func TestAttachRequiresSeller(t *testing.T) {
	a := newTestApp(t)
	a.postForm(t, "/auth/mode", url.Values{"mode": {"signup"}})

	resp, _ := a.postMultipart(t, "/auth/image", nil, "me.png", pngBytes(64))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, a.previews.Live())
}

func TestCloseReleasesPreview(t *testing.T) {
	a := newTestApp(t)
	a.postForm(t, "/auth/role", url.Values{"role": {"seller"}, "formMode": {"signup"}})
	a.postMultipart(t, "/auth/image", nil, "me.png", pngBytes(64))
	require.Equal(t, 1, a.previews.Live())

	resp, _ := a.postForm(t, "/auth/close", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Zero(t, a.previews.Live())
	assert.Zero(t, a.sessions.Len())
}

func TestPasswordVisibilityKeepsFields(t *testing.T) {
	a := newTestApp(t)

	_, body := a.postForm(t, "/auth/password-visibility", url.Values{"email": {"ada@yourcompany.com"}, "password": {"secret"}})
	assert.Contains(t, body, `value="ada@yourcompany.com"`)
	assert.Contains(t, body, `type="text" name="password"`)
	assert.NotContains(t, body, "secret")
}

func TestAuthReadsDoNotCreateSessions(t *testing.T) {
	a := newTestApp(t)

	for i := 0; i < 200; i++ {
		resp, _ := a.do(t, httptest.NewRequest(http.MethodGet, "/auth", nil))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		a.get(t, "/auth/provider/google?role=nobody")
	}
	assert.Zero(t, a.sessions.Len())
	assert.Empty(t, a.cookie)

	_, body := a.get(t, "/auth?mode=signup")
	assert.Contains(t, body, `name="formMode" value="signup"`)
	assert.Zero(t, a.sessions.Len())

	a.postForm(t, "/auth/mode", url.Values{"mode": {"signup"}})
	assert.Equal(t, 1, a.sessions.Len())
	_, body = a.get(t, "/auth")
	assert.Contains(t, body, `name="formMode" value="signup"`)
	assert.Equal(t, 1, a.sessions.Len())
}

func TestProviderRedirect(t *testing.T) {
	a := newTestApp(t)

	resp, _ := a.get(t, "/auth/provider/google?role=seller")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "http://auth.test/api/auth/google?role=seller", resp.Header.Get("Location"))

	resp, _ = a.get(t, "/auth/provider/myspace")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAuthLimiter(t *testing.T) {
	l := NewAuthLimiter(2)
	now := time.Now()
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("5.6.7.8"))

	now = now.Add(time.Hour)
	assert.Equal(t, 2, l.Cleanup())
	assert.True(t, l.Allow("1.2.3.4"))
}

func TestAuthLimiterMiddleware(t *testing.T) {
	l := NewAuthLimiter(1)
	app := fiber.New()
	app.Use(l.Middleware())
	app.Post("/", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	a := newTestApp(t)

	resp, body := a.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}
