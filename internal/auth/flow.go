package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/jjenkins/revera/internal/obs"
)

// State is the lifecycle position of a submission attempt
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// OutcomeKind classifies the result of the last attempt
type OutcomeKind int

const (
	OutcomeNone OutcomeKind = iota
	OutcomeSuccess
	OutcomeFailure
)

// Outcome is what the page shows after a submit
type Outcome struct {
	Kind     OutcomeKind
	Title    string
	Message  string
	Redirect string
	Cause    error
}

// Snapshot is a read-only copy of the flow for rendering
type Snapshot struct {
	ID           string
	Mode         Mode
	Role         Role
	ShowPassword bool
	Fields       Fields
	Preview      string
	State        State
	Outcome      Outcome
}

// Flow is one sign-in / sign-up modal. All methods are safe for concurrent
// use; at most one backend request is in flight at a time.
type Flow struct {
	mu       sync.Mutex
	policy   Policy
	backend  Backend
	previews PreviewStore

	id           string
	mode         Mode
	role         Role
	showPassword bool
	fields       Fields
	image        *Attachment
	state        State
	outcome      Outcome
	cancel       context.CancelFunc
	closed       bool
}

// NewFlow creates a flow in the Idle state, signing in as a buyer
func NewFlow(policy Policy, backend Backend, previews PreviewStore) *Flow {
	return &Flow{
		policy:   policy,
		backend:  backend,
		previews: previews,
		id:       uuid.NewString(),
		mode:     ModeSignIn,
		role:     RoleBuyer,
		state:    StateIdle,
	}
}

// Snapshot returns the current state
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := Snapshot{
		ID:           f.id,
		Mode:         f.mode,
		Role:         f.role,
		ShowPassword: f.showPassword,
		Fields:       f.fields,
		State:        f.state,
		Outcome:      f.outcome,
	}
	s.Fields.Password = ""
	if f.image != nil {
		s.Preview = f.image.Preview
	}
	return s
}

// mutable must be called with f.mu held
func (f *Flow) mutable() error {
	if f.closed {
		return ErrFlowClosed
	}
	if f.state == StateSubmitting {
		return ErrSubmitInFlight
	}
	return nil
}

// reset must be called with f.mu held
func (f *Flow) reset() {
	f.state = StateIdle
	f.outcome = Outcome{}
}

// SwitchMode changes between sign-in and sign-up. Typed values and any
// attached image are discarded.
func (f *Flow) SwitchMode(mode Mode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutable(); err != nil {
		return err
	}
	if mode == f.mode && f.state != StateSucceeded {
		return nil
	}
	f.mode = mode
	f.fields = Fields{}
	f.showPassword = false
	f.releaseImage()
	f.id = uuid.NewString()
	f.reset()
	return nil
}

// SwitchRole changes the role. Shared fields survive; switching to buyer
// drops the seller-only fields and the attached image.
func (f *Flow) SwitchRole(role Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutable(); err != nil {
		return err
	}
	f.role = role
	if role == RoleBuyer {
		f.fields.Business = ""
		f.fields.TaxID = ""
		f.releaseImage()
	}
	if f.state == StateFailed {
		f.reset()
	}
	return nil
}

// TogglePasswordVisibility flips whether the password is shown in clear text
func (f *Flow) TogglePasswordVisibility() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.showPassword = !f.showPassword
	return f.showPassword
}

// Update replaces the typed values. Seller fields are ignored for buyers.
func (f *Flow) Update(fields Fields) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutable(); err != nil {
		return err
	}
	if f.role != RoleSeller || f.mode != ModeSignUp {
		fields.Business = ""
		fields.TaxID = ""
	}
	if f.mode == ModeSignIn {
		fields = Fields{Email: fields.Email, Password: fields.Password}
	}
	f.fields = fields
	return nil
}

// AttachImage accepts a seller avatar, replacing any previous one. The
// previous preview is released before the new one is created.
func (f *Flow) AttachImage(file ImageFile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutable(); err != nil {
		return err
	}
	if f.mode != ModeSignUp || f.role != RoleSeller {
		return ErrAttachNotAllowed
	}

	contentType := SniffImageType(file.Data)
	if err := f.policy.CheckImage(contentType, int64(len(file.Data))); err != nil {
		return err
	}

	f.releaseImage()
	handle, err := f.previews.Create(contentType, file.Data)
	if err != nil {
		return err
	}
	f.image = &Attachment{
		Filename:    file.Filename,
		ContentType: contentType,
		Data:        file.Data,
		Preview:     handle,
	}
	return nil
}

// ClearImage removes the attachment. It is a no-op when nothing is attached.
func (f *Flow) ClearImage() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutable(); err != nil {
		return err
	}
	f.releaseImage()
	return nil
}

// releaseImage must be called with f.mu held
func (f *Flow) releaseImage() {
	if f.image == nil {
		return
	}
	f.previews.Release(f.image.Preview)
	f.image = nil
}

// Close tears the flow down. The preview is released and a request still in
// flight is abandoned by cancelling its context.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.releaseImage()
	f.fields = Fields{}
}

// Submit validates the form and, if it passes, sends one request to the
// backend. It returns ErrSubmitInFlight while a previous submit is pending
// and ErrAttemptFinished once the attempt has succeeded; every other
// problem is reported through the Failed outcome.
func (f *Flow) Submit(ctx context.Context) (Outcome, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return Outcome{}, ErrFlowClosed
	}
	switch f.state {
	case StateSubmitting:
		f.mu.Unlock()
		return Outcome{}, ErrSubmitInFlight
	case StateSucceeded:
		f.mu.Unlock()
		return Outcome{}, ErrAttemptFinished
	}

	f.state = StateValidating
	mode, role, attempt := f.mode, f.role, f.id

	var (
		signIn SignInForm
		signUp SignUpForm
		verr   *ValidationError
	)
	if mode == ModeSignIn {
		signIn, verr = ValidateSignIn(f.policy, role, f.fields)
	} else {
		signUp, verr = ValidateSignUp(f.policy, role, f.fields, f.image)
	}
	if verr != nil {
		out := Outcome{Kind: OutcomeFailure, Title: verr.Title, Message: verr.Message, Cause: verr}
		f.state = StateFailed
		f.outcome = out
		f.mu.Unlock()
		obs.Logger.Info("auth_validation_failed", "attempt", attempt, "mode", mode, "field", verr.Field)
		return out, nil
	}

	reqCtx, cancel := context.WithCancel(ctx)
	f.state = StateSubmitting
	f.cancel = cancel
	f.mu.Unlock()

	obs.Logger.Info("auth_submit", "attempt", attempt, "mode", mode, "role", role)

	var (
		resp *Response
		err  error
	)
	if mode == ModeSignIn {
		resp, err = f.backend.SignIn(reqCtx, signIn)
	} else {
		resp, err = f.backend.SignUp(reqCtx, signUp)
	}
	cancel()

	out := outcomeFor(mode, role, resp, err)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancel = nil
	if f.closed {
		obs.Logger.Info("auth_submit_abandoned", "attempt", attempt)
		return out, nil
	}
	f.outcome = out
	if out.Kind == OutcomeSuccess {
		f.state = StateSucceeded
		f.releaseImage()
		f.fields = Fields{}
		obs.Logger.Info("auth_succeeded", "attempt", attempt, "mode", mode, "redirect", out.Redirect != "")
	} else {
		f.state = StateFailed
		f.fields.Password = ""
		obs.Logger.Warn("auth_failed", "attempt", attempt, "mode", mode, "error", out.Cause)
	}
	return out, nil
}

func outcomeFor(mode Mode, role Role, resp *Response, err error) Outcome {
	if err == nil {
		msg := resp.Message
		title := "Signed in"
		if mode == ModeSignUp {
			title = "Account created"
			if msg == "" {
				msg = "Registered as " + string(role) + "."
			}
		} else if msg == "" {
			msg = "Welcome back"
		}
		return Outcome{Kind: OutcomeSuccess, Title: title, Message: msg, Redirect: resp.Redirect}
	}

	title := "Sign in error"
	fallback := MsgSignInFailed
	if mode == ModeSignUp {
		title = "Sign up error"
		fallback = MsgSignUpFailed
	}

	var se *StatusError
	if errors.As(err, &se) {
		msg := se.Message
		if msg == "" {
			msg = fallback
		}
		return Outcome{Kind: OutcomeFailure, Title: title, Message: msg, Cause: err}
	}
	return Outcome{Kind: OutcomeFailure, Title: title, Message: MsgTransport, Cause: err}
}
