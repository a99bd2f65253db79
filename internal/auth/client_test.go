package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSignIn(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/signin", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "jane@yourcompany.com", r.FormValue("email"))
		assert.Equal(t, "pw", r.FormValue("password"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Response{Message: "Welcome back", Redirect: "/home"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	resp, err := c.SignIn(context.Background(), SignInForm{Email: "jane@yourcompany.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "Welcome back", resp.Message)
	assert.Equal(t, "/home", resp.Redirect)
	assert.EqualValues(t, 1, hits.Load())
}

func TestClientSellerSignUpIncludesAvatar(t *testing.T) {
	avatar := pngBytes(128)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/signup", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Jane", r.FormValue("firstName"))
		assert.Equal(t, "Doe", r.FormValue("lastName"))
		assert.Equal(t, "+1 555 0100", r.FormValue("phone"))
		assert.Equal(t, "on", r.FormValue("terms"))
		assert.Equal(t, "seller", r.FormValue("role"))
		assert.Equal(t, "Doe Motors", r.FormValue("business"))
		assert.Equal(t, "GST123", r.FormValue("taxId"))

		file, header, err := r.FormFile("avatar")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, avatar, data)
		assert.Equal(t, "me.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"Registered"}`))
	}))
	defer srv.Close()

	form := SellerSignUp{
		Profile:  Profile{FirstName: "Jane", LastName: "Doe", Email: "jane@yourcompany.com", Phone: "+1 555 0100", Password: "pw", Terms: true},
		Business: "Doe Motors",
		TaxID:    "GST123",
		Avatar:   &Attachment{Filename: "me.png", ContentType: "image/png", Data: avatar},
	}
	resp, err := NewClient(srv.URL, time.Second).SignUp(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, "Registered", resp.Message)
}

func TestClientBuyerSignUpOmitsSellerFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "buyer", r.FormValue("role"))
		_, hasBusiness := r.MultipartForm.Value["business"]
		assert.False(t, hasBusiness)
		assert.Empty(t, r.MultipartForm.File["avatar"])
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	form := BuyerSignUp{Profile: Profile{FirstName: "Jane", LastName: "Doe", Email: "jane@yourcompany.com", Password: "pw", Terms: true}}
	_, err := NewClient(srv.URL, time.Second).SignUp(context.Background(), form)
	require.NoError(t, err)
}

func TestClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"Email already exists"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).SignIn(context.Background(), SignInForm{Email: "a@b.c", Password: "x"})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusConflict, se.StatusCode)
	assert.Equal(t, "Email already exists", se.Message)
}

func TestClientErrorStatusNonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).SignIn(context.Background(), SignInForm{})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Empty(t, se.Message)
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).SignIn(context.Background(), SignInForm{})
	require.Error(t, err)
	var se *StatusError
	assert.False(t, errors.As(err, &se))
}

func TestClientProviderURL(t *testing.T) {
	c := NewClient("https://auth.example.com/", 0)

	u, err := c.ProviderURL("Google", RoleSeller)
	require.NoError(t, err)
	assert.Equal(t, "https://auth.example.com/api/auth/google?role=seller", u)

	u, err = c.ProviderURL("facebook", "admin")
	require.NoError(t, err)
	assert.Equal(t, "https://auth.example.com/api/auth/facebook?role=buyer", u)

	_, err = c.ProviderURL("myspace", RoleBuyer)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
