package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var official = NewDomains("yourcompany.com", "partner.org")

func TestIsAllowedDomain(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"jane@yourcompany.com", true},
		{"jane@YourCompany.COM", true},
		{" jane@partner.org ", true},
		{"user@gmail.com", false},
		{"jane.yourcompany.com", false},
		{"a@b@yourcompany.com", false},
		{"@yourcompany.com", false},
		{"jane@sub.yourcompany.com", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsAllowedDomain(tt.email, official), tt.email)
	}

	assert.False(t, IsAllowedDomain("jane@yourcompany.com", NewDomains()))
}

func TestParseDomains(t *testing.T) {
	d := ParseDomains(" YourCompany.com, ,partner.org")
	assert.Len(t, d, 2)
	assert.Contains(t, d, "yourcompany.com")
	assert.Contains(t, d, "partner.org")
}

func TestValidateSignIn(t *testing.T) {
	p := Policy{AllowedDomains: official}

	_, verr := ValidateSignIn(p, RoleBuyer, Fields{Email: "jane@yourcompany.com"})
	require.NotNil(t, verr)
	assert.Equal(t, "password", verr.Field)

	_, verr = ValidateSignIn(p, RoleBuyer, Fields{Email: "jane@gmail.com", Password: "pw"})
	require.NotNil(t, verr)
	assert.Equal(t, MsgOfficialSignIn, verr.Message)

	// malformed addresses get the same message as foreign domains
	_, verr = ValidateSignIn(p, RoleBuyer, Fields{Email: "not-an-email", Password: "pw"})
	require.NotNil(t, verr)
	assert.Equal(t, MsgOfficialSignIn, verr.Message)

	form, verr := ValidateSignIn(p, RoleSeller, Fields{Email: " jane@partner.org", Password: "pw"})
	require.Nil(t, verr)
	assert.Equal(t, SignInForm{Role: RoleSeller, Email: "jane@partner.org", Password: "pw"}, form)
}

func signUpFields() Fields {
	return Fields{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@yourcompany.com",
		Phone:     "+1 555 0100",
		Password:  "secret",
		Terms:     true,
		Business:  "Doe Motors",
		TaxID:     "GST123",
	}
}

func TestValidateSignUp(t *testing.T) {
	p := Policy{AllowedDomains: official}

	f := signUpFields()
	f.LastName = "  "
	_, verr := ValidateSignUp(p, RoleBuyer, f, nil)
	require.NotNil(t, verr)
	assert.Equal(t, "lastName", verr.Field)

	f = signUpFields()
	f.Email = "user@gmail.com"
	_, verr = ValidateSignUp(p, RoleBuyer, f, nil)
	require.NotNil(t, verr)
	assert.Equal(t, MsgOfficialSignUp, verr.Message)

	f = signUpFields()
	f.Terms = false
	_, verr = ValidateSignUp(p, RoleBuyer, f, nil)
	require.NotNil(t, verr)
	assert.Equal(t, "terms", verr.Field)

	form, verr := ValidateSignUp(p, RoleBuyer, signUpFields(), nil)
	require.Nil(t, verr)
	buyer, ok := form.(BuyerSignUp)
	require.True(t, ok)
	assert.Equal(t, "Jane", buyer.FirstName)
	assert.Equal(t, RoleBuyer, form.Role())

	img := &Attachment{Filename: "me.png", ContentType: "image/png", Data: pngBytes(10)}
	form, verr = ValidateSignUp(p, RoleSeller, signUpFields(), img)
	require.Nil(t, verr)
	seller, ok := form.(SellerSignUp)
	require.True(t, ok)
	assert.Equal(t, "Doe Motors", seller.Business)
	assert.Equal(t, "GST123", seller.TaxID)
	assert.Same(t, img, seller.Avatar)
}

func TestCheckImage(t *testing.T) {
	p := Policy{MaxImageBytes: 100}
	assert.NoError(t, p.CheckImage("image/png", 100))
	assert.ErrorIs(t, p.CheckImage("image/png", 101), ErrImageTooLarge)
	assert.ErrorIs(t, p.CheckImage("application/pdf", 10), ErrImageType)

	assert.NoError(t, Policy{}.CheckImage("image/jpeg", DefaultMaxImageBytes))
	assert.ErrorIs(t, Policy{}.CheckImage("image/jpeg", DefaultMaxImageBytes+1), ErrImageTooLarge)
}
