package templates

import (
	"bytes"
	"context"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/revera/internal/auth"
	"github.com/jjenkins/revera/internal/catalog"
	"github.com/jjenkins/revera/internal/model"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{850, "$850"},
		{1200, "$1,200"},
		{185000, "$185,000"},
		{1250000, "$1,250,000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMoney(tt.in))
	}
}

func TestPriceLabel(t *testing.T) {
	rent := 750.0
	l := model.Listing{Price: 265000, RentPrice: &rent, Kind: model.KindBoth}
	assert.Equal(t, "$265,000", PriceLabel(l, model.KindBuy))
	assert.Equal(t, "$750/day", PriceLabel(l, model.KindRent))
}

func TestCarCardEscapes(t *testing.T) {
	l := model.Listing{ID: "x1", Brand: "<script>", Name: `"Evil"`, Year: 2024, Seats: 2, Kind: model.KindBuy, Status: model.StatusAvailable}
	out := renderString(t, CarCard(l, model.KindBuy))

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "&#34;Evil&#34;")
}

func TestCarDetailDisablesUnavailable(t *testing.T) {
	l := model.Listing{ID: "b5", Brand: "BMW", Name: "M8", Year: 2023, Seats: 4, Price: 185000, Kind: model.KindBuy, Status: model.StatusSold}
	out := renderString(t, CarDetail(l, model.KindBuy, nil))
	assert.Contains(t, out, `type="submit" disabled`)
	assert.Contains(t, out, "Sold")
}

func TestAuthModalSellerFields(t *testing.T) {
	data := AuthData{
		Flow: auth.Snapshot{
			Mode:    auth.ModeSignUp,
			Role:    auth.RoleSeller,
			Preview: "abc",
			Outcome: auth.Outcome{Kind: auth.OutcomeFailure, Title: "Sign up error", Message: "Email taken"},
		},
		Domains:   []string{"yourcompany.com"},
		Providers: auth.Providers,
	}
	out := renderString(t, AuthModal(data))

	assert.Contains(t, out, `name="business"`)
	assert.Contains(t, out, `src="/auth/preview/abc"`)
	assert.Contains(t, out, "Replace image")
	assert.Contains(t, out, "Email taken")
	assert.Contains(t, out, "you@yourcompany.com")
	assert.Contains(t, out, `/auth/provider/google?role=seller`)
}

func TestAuthModalBuyerSignIn(t *testing.T) {
	out := renderString(t, AuthModal(AuthData{Flow: auth.Snapshot{Mode: auth.ModeSignIn, Role: auth.RoleBuyer}}))

	assert.NotContains(t, out, `name="business"`)
	assert.NotContains(t, out, `name="terms"`)
	assert.Contains(t, out, `type="password" name="password"`)
	assert.NotContains(t, out, `class="notice`)
}

func TestAuthModalCarriesDraftState(t *testing.T) {
	out := renderString(t, AuthModal(AuthData{Flow: auth.Snapshot{Mode: auth.ModeSignUp, Role: auth.RoleSeller}}))

	assert.Contains(t, out, `name="formMode" value="signup"`)
	assert.Contains(t, out, `name="formRole" value="seller"`)
	assert.Contains(t, out, `class="tab active" formaction="/auth/mode" name="mode" value="signup"`)
	assert.Contains(t, out, `class="tab" formaction="/auth/mode" name="mode" value="signin"`)
	assert.Contains(t, out, "Upload image")
}

func TestListingsRentShowsBookingFields(t *testing.T) {
	view := &catalog.View{
		Mode:      model.KindRent,
		Query:     model.CatalogQuery{Sort: model.SortPriceLow},
		Locations: []catalog.Option{{Value: model.FacetAll, Label: "All Locations"}, {Value: "Miami", Label: "Miami"}},
		Sorts:     catalog.SortOptions(),
	}
	window := catalog.RentalWindow{Pickup: "2025-06-01", Return: "2025-06-08", Duration: "weekend"}
	notice := &Notice{Title: "Missing Information", Message: "Please select pickup and return dates."}
	out := renderString(t, Listings(view, window, notice))

	assert.Contains(t, out, `name="pickup" value="2025-06-01"`)
	assert.Contains(t, out, `name="return" value="2025-06-08"`)
	assert.Contains(t, out, `<option value="weekend" selected>Weekend Special</option>`)
	assert.Contains(t, out, `class="notice notice-error"`)
	assert.Contains(t, out, "Showing 0 of 0 cars")

	view.Mode = model.KindBuy
	out = renderString(t, Listings(view, catalog.RentalWindow{}, nil))
	assert.NotContains(t, out, `name="pickup"`)
	assert.NotContains(t, out, `role="status"`)
}

func TestNotFoundEscapesPath(t *testing.T) {
	out := renderString(t, NotFound(`/<img src=x onerror=alert(1)>`))
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "&lt;img src=x onerror=alert(1)&gt;")
	assert.NotContains(t, out, "<img src=x")
}

func TestProviderLinkSanitised(t *testing.T) {
	out := renderString(t, AuthModal(AuthData{
		Flow:      auth.Snapshot{Mode: auth.ModeSignIn, Role: auth.RoleBuyer},
		Providers: []string{"x\"><script>"},
	}))
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, `/auth/provider/x%22%3E%3Cscript%3E?role=buyer`)
}
