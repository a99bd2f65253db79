// Package auth implements the sign-in / sign-up submission flow and the
// client for the external authentication backend.
package auth

import "fmt"

// Mode selects sign-in or sign-up
type Mode string

const (
	ModeSignIn Mode = "signin"
	ModeSignUp Mode = "signup"
)

// Role is the account type being signed into or created
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// ParseMode returns the mode named by s
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSignIn, ModeSignUp:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// ParseRole returns the role named by s
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleBuyer, RoleSeller:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Fields holds the raw values typed into the form. Which of them are
// meaningful depends on the mode and role.
type Fields struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
	Terms     bool
	Business  string
	TaxID     string
}

// SignInForm is a validated sign-in payload
type SignInForm struct {
	Role     Role
	Email    string
	Password string
}

// SignUpForm is a validated sign-up payload, either BuyerSignUp or SellerSignUp.
type SignUpForm interface {
	Details() Profile
	Role() Role
	signUp()
}

// Profile holds the sign-up fields shared by every role
type Profile struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
	Terms     bool
}

// BuyerSignUp is a buyer account request
type BuyerSignUp struct {
	Profile
}

func (b BuyerSignUp) Details() Profile { return b.Profile }
func (BuyerSignUp) Role() Role { return RoleBuyer }
func (BuyerSignUp) signUp() {}

// SellerSignUp is a seller account request with optional business details and avatar
type SellerSignUp struct {
	Profile
	Business string
	TaxID    string
	Avatar   *Attachment
}

func (s SellerSignUp) Details() Profile { return s.Profile }
func (SellerSignUp) Role() Role { return RoleSeller }
func (SellerSignUp) signUp() {}
