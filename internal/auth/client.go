package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout  = 15 * time.Second
	maxResponseSize = 1 << 20
	signInPath      = "/api/auth/signin"
	signUpPath      = "/api/auth/signup"
)

// Providers are the identity providers the backend can hand off to
var Providers = []string{"google", "facebook"}

var knownProviders = map[string]bool{
	"google":   true,
	"facebook": true,
}

// Response is the JSON body returned by the auth backend
type Response struct {
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// Backend is the external authentication service
type Backend interface {
	SignIn(ctx context.Context, form SignInForm) (*Response, error)
	SignUp(ctx context.Context, form SignUpForm) (*Response, error)
}

// Client talks to the auth backend over HTTP. Requests are never retried:
// a repeated sign-up could create a duplicate account.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// SignIn posts the sign-in form
func (c *Client) SignIn(ctx context.Context, form SignInForm) (*Response, error) {
	body, contentType, err := encodeMultipart(func(w *multipart.Writer) error {
		if err := w.WriteField("email", form.Email); err != nil {
			return err
		}
		return w.WriteField("password", form.Password)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode sign-in form: %w", err)
	}
	return c.post(ctx, signInPath, body, contentType)
}

// SignUp posts the sign-up form, including the seller avatar when present
func (c *Client) SignUp(ctx context.Context, form SignUpForm) (*Response, error) {
	p := form.Details()
	body, contentType, err := encodeMultipart(func(w *multipart.Writer) error {
		fields := [][2]string{
			{"firstName", p.FirstName},
			{"lastName", p.LastName},
			{"email", p.Email},
			{"phone", p.Phone},
			{"password", p.Password},
			{"terms", termsValue(p.Terms)},
			{"role", string(form.Role())},
		}
		if s, ok := form.(SellerSignUp); ok {
			fields = append(fields, [2]string{"business", s.Business}, [2]string{"taxId", s.TaxID})
		}
		for _, f := range fields {
			if err := w.WriteField(f[0], f[1]); err != nil {
				return err
			}
		}

		s, ok := form.(SellerSignUp)
		if !ok || s.Avatar == nil {
			return nil
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="avatar"; filename=%q`, s.Avatar.Filename))
		h.Set("Content-Type", s.Avatar.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return err
		}
		_, err = part.Write(s.Avatar.Data)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode sign-up form: %w", err)
	}
	return c.post(ctx, signUpPath, body, contentType)
}

// ProviderURL is where the browser is sent to start a third-party sign-in
func (c *Client) ProviderURL(provider string, role Role) (string, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if !knownProviders[provider] {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	if _, err := ParseRole(string(role)); err != nil {
		role = RoleBuyer
	}
	q := url.Values{"role": {string(role)}}
	return fmt.Sprintf("%s/api/auth/%s?%s", c.baseURL, url.PathEscape(provider), q.Encode()), nil
}

func termsValue(agreed bool) string {
	if agreed {
		return "on"
	}
	return ""
}

func encodeMultipart(write func(w *multipart.Writer) error) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := write(w); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// post performs a single POST and decodes the JSON reply
func (c *Client) post(ctx context.Context, path string, body io.Reader, contentType string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	var out Response
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: out.Message}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to parse response from %s: %w", path, decodeErr)
	}
	return &out, nil
}
