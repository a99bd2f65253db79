package handlers

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jjenkins/revera/internal/auth"
	"github.com/jjenkins/revera/internal/obs"
	"github.com/jjenkins/revera/internal/templates"
)

const sessionCookie = "revera_session"

// PreviewSource serves stored image previews
type PreviewSource interface {
	Get(handle string) (auth.Preview, bool)
}

// ProviderLinker builds third-party sign-in URLs
type ProviderLinker interface {
	ProviderURL(provider string, role auth.Role) (string, error)
}

// AuthHandlers serves the sign-in / sign-up modal. Each browser session owns
// one auth.Flow.
type AuthHandlers struct {
	sessions  *auth.Sessions
	previews  PreviewSource
	providers ProviderLinker
	domains   []string
	maxImage  int64
}

// NewAuthHandlers creates the auth handlers
func NewAuthHandlers(sessions *auth.Sessions, previews PreviewSource, providers ProviderLinker, domains []string, maxImage int64) *AuthHandlers {
	if maxImage <= 0 {
		maxImage = auth.DefaultMaxImageBytes
	}
	return &AuthHandlers{
		sessions:  sessions,
		previews:  previews,
		providers: providers,
		domains:   domains,
		maxImage:  maxImage,
	}
}

// Register mounts the auth routes on r
func (h *AuthHandlers) Register(r fiber.Router) {
	r.Get("/", h.Show)
	r.Post("/mode", h.Mode)
	r.Post("/role", h.Role)
	r.Post("/password-visibility", h.PasswordVisibility)
	r.Post("/image", h.AttachImage)
	r.Post("/image/clear", h.ClearImage)
	r.Post("/signin", h.Submit(auth.ModeSignIn))
	r.Post("/signup", h.Submit(auth.ModeSignUp))
	r.Get("/preview/:handle", h.Preview)
	r.Get("/provider/:provider", h.Provider)
	r.Post("/close", h.Close)
}

func (h *AuthHandlers) flow(c *fiber.Ctx) *auth.Flow {
	_, flow := h.session(c)
	return flow
}

// session returns the caller's session, issuing a cookie for new ones.
// Only state-changing routes call it, so reads never allocate a session.
func (h *AuthHandlers) session(c *fiber.Ctx) (string, *auth.Flow) {
	id, flow := h.sessions.Get(c.Cookies(sessionCookie))
	if id != c.Cookies(sessionCookie) {
		c.Cookie(&fiber.Cookie{
			Name:     sessionCookie,
			Value:    id,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		restoreDraft(c, flow)
	}
	return id, flow
}

// current returns the caller's session if there is one, or an unregistered
// draft flow otherwise
func (h *AuthHandlers) current(c *fiber.Ctx) *auth.Flow {
	if flow, ok := h.sessions.Lookup(c.Cookies(sessionCookie)); ok {
		return flow
	}
	return h.sessions.Draft()
}

// restoreDraft carries the mode and role of a page rendered from a draft
// into the session created by its first post
func restoreDraft(c *fiber.Ctx, flow *auth.Flow) {
	if m, err := auth.ParseMode(c.FormValue("formMode")); err == nil {
		if err := flow.SwitchMode(m); err != nil {
			obs.Logger.Warn("auth_draft_restore_failed", "mode", m, "error", err)
		}
	}
	if r, err := auth.ParseRole(c.FormValue("formRole")); err == nil {
		if err := flow.SwitchRole(r); err != nil {
			obs.Logger.Warn("auth_draft_restore_failed", "role", r, "error", err)
		}
	}
}

func (h *AuthHandlers) page(c *fiber.Ctx, status int, flow *auth.Flow, notice *templates.Notice) error {
	data := templates.AuthData{
		Flow:      flow.Snapshot(),
		Domains:   h.domains,
		Providers: auth.Providers,
		Notice:    notice,
	}
	return renderStatus(c, status, templates.AuthModal(data))
}

// failure renders the modal with a notice describing err
func (h *AuthHandlers) failure(c *fiber.Ctx, flow *auth.Flow, err error) error {
	status := fiber.StatusUnprocessableEntity
	notice := &templates.Notice{Title: "Something went wrong", Message: err.Error()}

	switch {
	case errors.Is(err, auth.ErrSubmitInFlight):
		status = fiber.StatusConflict
		notice = &templates.Notice{Title: "Please wait", Message: "Your previous request is still being processed."}
	case errors.Is(err, auth.ErrAttemptFinished):
		status = fiber.StatusConflict
		notice = &templates.Notice{Success: true, Title: "Already done", Message: "This request has already succeeded."}
	case errors.Is(err, auth.ErrImageType):
		notice = &templates.Notice{Title: "Unsupported image", Message: "Please choose a JPG, PNG, GIF or WEBP image."}
	case errors.Is(err, auth.ErrImageTooLarge):
		notice = &templates.Notice{Title: "Image too large", Message: "Please choose an image under " + megabytes(h.maxImage) + "."}
	case errors.Is(err, auth.ErrAttachNotAllowed):
		status = fiber.StatusBadRequest
		notice = &templates.Notice{Title: "Not available", Message: "Only seller sign-ups can attach an image."}
	}
	return h.page(c, status, flow, notice)
}

// keepTyped stores the submitted values so they survive the action
func (h *AuthHandlers) keepTyped(c *fiber.Ctx, flow *auth.Flow) error {
	return flow.Update(fieldsFrom(c))
}

func fieldsFrom(c *fiber.Ctx) auth.Fields {
	return auth.Fields{
		FirstName: formValue(c, "firstName"),
		LastName:  formValue(c, "lastName"),
		Email:     formValue(c, "email"),
		Phone:     formValue(c, "phone"),
		Password:  strings.Clone(c.FormValue("password")),
		Terms:     c.FormValue("terms") != "",
		Business:  formValue(c, "business"),
		TaxID:     formValue(c, "taxId"),
	}
}

// formValue copies the value out of the request buffer, which fiber reuses
// once the handler returns.
func formValue(c *fiber.Ctx, key string) string {
	return strings.Clone(strings.TrimSpace(c.FormValue(key)))
}

// Show renders the modal. Visitors without a session see a draft.
func (h *AuthHandlers) Show(c *fiber.Ctx) error {
	flow := h.current(c)
	if m, err := auth.ParseMode(c.Query("mode")); err == nil {
		if err := flow.SwitchMode(m); err != nil {
			return h.failure(c, flow, err)
		}
	}
	return h.page(c, fiber.StatusOK, flow, nil)
}

// Mode switches between sign-in and sign-up
func (h *AuthHandlers) Mode(c *fiber.Ctx) error {
	flow := h.flow(c)
	mode, err := auth.ParseMode(c.FormValue("mode"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid mode")
	}
	if err := flow.SwitchMode(mode); err != nil {
		return h.failure(c, flow, err)
	}
	return h.page(c, fiber.StatusOK, flow, nil)
}

// Role switches between buyer and seller
func (h *AuthHandlers) Role(c *fiber.Ctx) error {
	flow := h.flow(c)
	role, err := auth.ParseRole(c.FormValue("role"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid role")
	}
	if err := h.keepTyped(c, flow); err != nil {
		return h.failure(c, flow, err)
	}
	if err := flow.SwitchRole(role); err != nil {
		return h.failure(c, flow, err)
	}
	return h.page(c, fiber.StatusOK, flow, nil)
}

// PasswordVisibility toggles clear-text display of the password
func (h *AuthHandlers) PasswordVisibility(c *fiber.Ctx) error {
	flow := h.flow(c)
	if err := h.keepTyped(c, flow); err != nil {
		return h.failure(c, flow, err)
	}
	flow.TogglePasswordVisibility()
	return h.page(c, fiber.StatusOK, flow, nil)
}

// AttachImage accepts the avatar file of a seller sign-up
func (h *AuthHandlers) AttachImage(c *fiber.Ctx) error {
	flow := h.flow(c)
	if err := h.keepTyped(c, flow); err != nil {
		return h.failure(c, flow, err)
	}

	fh, err := c.FormFile("avatar")
	if err != nil {
		return h.page(c, fiber.StatusBadRequest, flow, &templates.Notice{Title: "No image", Message: "Choose an image to upload."})
	}

	f, err := fh.Open()
	if err != nil {
		return h.failure(c, flow, err)
	}
	defer f.Close()

	// One byte over the limit is enough for the size check to fail.
	data, err := io.ReadAll(io.LimitReader(f, h.maxImage+1))
	if err != nil {
		return h.failure(c, flow, err)
	}

	if err := flow.AttachImage(auth.ImageFile{Filename: fh.Filename, Data: data}); err != nil {
		obs.Logger.Info("auth_image_rejected", "filename", fh.Filename, "size", fh.Size, "error", err)
		return h.failure(c, flow, err)
	}
	return h.page(c, fiber.StatusOK, flow, nil)
}

// ClearImage removes the attached avatar
func (h *AuthHandlers) ClearImage(c *fiber.Ctx) error {
	flow := h.flow(c)
	if err := h.keepTyped(c, flow); err != nil {
		return h.failure(c, flow, err)
	}
	if err := flow.ClearImage(); err != nil {
		return h.failure(c, flow, err)
	}
	return h.page(c, fiber.StatusOK, flow, nil)
}

// Submit validates and sends the form for mode. A successful attempt with a
// redirect ends the session and sends the browser on.
func (h *AuthHandlers) Submit(mode auth.Mode) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, flow := h.session(c)
		if flow.Snapshot().Mode != mode {
			if err := flow.SwitchMode(mode); err != nil {
				return h.failure(c, flow, err)
			}
		}
		if err := h.keepTyped(c, flow); err != nil {
			return h.failure(c, flow, err)
		}

		out, err := flow.Submit(c.UserContext())
		if err != nil {
			return h.failure(c, flow, err)
		}

		switch out.Kind {
		case auth.OutcomeSuccess:
			if out.Redirect != "" {
				h.sessions.End(id)
				c.ClearCookie(sessionCookie)
				return c.Redirect(out.Redirect, fiber.StatusSeeOther)
			}
			return h.page(c, fiber.StatusOK, flow, nil)
		default:
			return h.page(c, fiber.StatusUnprocessableEntity, flow, nil)
		}
	}
}

// Preview serves an attached image preview
func (h *AuthHandlers) Preview(c *fiber.Ctx) error {
	p, ok := h.previews.Get(c.Params("handle"))
	if !ok {
		return c.SendStatus(fiber.StatusNotFound)
	}
	c.Set(fiber.HeaderContentType, p.ContentType)
	c.Set(fiber.HeaderCacheControl, "private, no-store")
	return c.Send(p.Data)
}

// Provider hands the browser off to a third-party identity provider
func (h *AuthHandlers) Provider(c *fiber.Ctx) error {
	role, err := auth.ParseRole(c.Query("role"))
	if err != nil {
		role = h.current(c).Snapshot().Role
	}
	target, err := h.providers.ProviderURL(c.Params("provider"), role)
	if errors.Is(err, auth.ErrUnknownProvider) {
		return c.SendStatus(fiber.StatusNotFound)
	}
	if err != nil {
		return err
	}
	obs.Logger.Info("auth_provider_handoff", "provider", c.Params("provider"), "role", role)
	return c.Redirect(target, fiber.StatusFound)
}

// Close dismisses the modal, abandoning any pending request
func (h *AuthHandlers) Close(c *fiber.Ctx) error {
	if id := c.Cookies(sessionCookie); id != "" {
		h.sessions.End(id)
	}
	c.ClearCookie(sessionCookie)
	return c.Redirect("/", fiber.StatusSeeOther)
}

func megabytes(n int64) string {
	return strconv.FormatFloat(float64(n)/float64(1<<20), 'f', -1, 64) + " MB"
}
