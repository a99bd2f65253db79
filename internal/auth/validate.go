package auth

import (
	"strings"
)

// Domains is an allow-list of official email domains
type Domains map[string]struct{}

// NewDomains builds an allow-list; entries are trimmed and lower-cased and
// blanks are dropped.
func NewDomains(domains ...string) Domains {
	d := make(Domains, len(domains))
	for _, s := range domains {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			d[s] = struct{}{}
		}
	}
	return d
}

// ParseDomains splits a comma separated list
func ParseDomains(list string) Domains {
	return NewDomains(strings.Split(list, ",")...)
}

// IsAllowedDomain reports whether email has exactly one "@" and its domain is
// in the allow-list, compared case-insensitively.
func IsAllowedDomain(email string, allowed Domains) bool {
	parts := strings.Split(strings.TrimSpace(email), "@")
	if len(parts) != 2 || parts[0] == "" {
		return false
	}
	_, ok := allowed[strings.ToLower(parts[1])]
	return ok
}

// Policy is the validation configuration shared by both operations
type Policy struct {
	AllowedDomains Domains
	MaxImageBytes  int64
}

const DefaultMaxImageBytes = 5 << 20

func (p Policy) maxImageBytes() int64 {
	if p.MaxImageBytes <= 0 {
		return DefaultMaxImageBytes
	}
	return p.MaxImageBytes
}

func required(field, value string) *ValidationError {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Title: "Missing information", Message: "Please fill in all required fields."}
	}
	return nil
}

// ValidateSignIn checks sign-in input and returns the payload to send
func ValidateSignIn(p Policy, role Role, f Fields) (SignInForm, *ValidationError) {
	for _, check := range []*ValidationError{
		required("email", f.Email),
		required("password", f.Password),
	} {
		if check != nil {
			return SignInForm{}, check
		}
	}
	if !IsAllowedDomain(f.Email, p.AllowedDomains) {
		return SignInForm{}, &ValidationError{Field: "email", Title: "Use official email", Message: MsgOfficialSignIn}
	}
	return SignInForm{Role: role, Email: strings.TrimSpace(f.Email), Password: f.Password}, nil
}

// ValidateSignUp checks sign-up input and returns the role specific payload.
// image is only consulted for sellers.
func ValidateSignUp(p Policy, role Role, f Fields, image *Attachment) (SignUpForm, *ValidationError) {
	for _, check := range []*ValidationError{
		required("firstName", f.FirstName),
		required("lastName", f.LastName),
		required("email", f.Email),
		required("password", f.Password),
	} {
		if check != nil {
			return nil, check
		}
	}
	if !IsAllowedDomain(f.Email, p.AllowedDomains) {
		return nil, &ValidationError{Field: "email", Title: "Use official email", Message: MsgOfficialSignUp}
	}
	if !f.Terms {
		return nil, &ValidationError{Field: "terms", Title: "Terms required", Message: MsgTerms}
	}

	profile := Profile{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Email:     strings.TrimSpace(f.Email),
		Phone:     strings.TrimSpace(f.Phone),
		Password:  f.Password,
		Terms:     f.Terms,
	}
	if role != RoleSeller {
		return BuyerSignUp{Profile: profile}, nil
	}
	if image != nil {
		if err := p.CheckImage(image.ContentType, int64(len(image.Data))); err != nil {
			return nil, &ValidationError{Field: "avatar", Title: "Image rejected", Message: err.Error()}
		}
	}
	return SellerSignUp{
		Profile:  profile,
		Business: strings.TrimSpace(f.Business),
		TaxID:    strings.TrimSpace(f.TaxID),
		Avatar:   image,
	}, nil
}
