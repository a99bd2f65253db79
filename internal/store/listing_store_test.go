package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/revera/internal/model"
)

func TestListingChecksum(t *testing.T) {
	rent := 900.0
	a := model.Listing{ID: "r1", Brand: "Ferrari", Name: "Roma", Year: 2023, Seats: 4, Kind: model.KindRent, Status: model.StatusAvailable, RentPrice: &rent}
	b := a

	sumA, err := listingChecksum(a)
	require.NoError(t, err)
	sumB, err := listingChecksum(b)
	require.NoError(t, err)
	assert.Equal(t, sumA, sumB)
	assert.Len(t, sumA, 32)

	other := 950.0
	b.RentPrice = &other
	sumB, err = listingChecksum(b)
	require.NoError(t, err)
	assert.NotEqual(t, sumA, sumB)
}

func TestNullFloat(t *testing.T) {
	assert.False(t, nullFloat(nil).Valid)

	p := 12.5
	v := nullFloat(&p)
	assert.True(t, v.Valid)
	assert.Equal(t, 12.5, v.Float64)
}

type fakeRow struct {
	values []any
}

func (r fakeRow) Scan(dest ...any) error {
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case *int:
			*p = r.values[i].(int)
		case *float64:
			*p = r.values[i].(float64)
		case *bool:
			*p = r.values[i].(bool)
		default:
			if nf, ok := d.(interface{ Scan(any) error }); ok {
				if err := nf.Scan(r.values[i]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func TestScanListing(t *testing.T) {
	row := fakeRow{values: []any{
		"r2", "Lamborghini", "Huracan", 2022, "Petrol", 2, "2.9s", 0.0,
		1200.0, "rent", "rented", true, "/img/huracan.jpg", "Milan",
	}}

	l, err := scanListing(row)
	require.NoError(t, err)
	assert.Equal(t, "r2", l.ID)
	assert.Equal(t, model.KindRent, l.Kind)
	assert.Equal(t, model.StatusRented, l.Status)
	require.NotNil(t, l.RentPrice)
	assert.Equal(t, 1200.0, *l.RentPrice)
	assert.True(t, l.Featured)
	assert.Equal(t, "Milan", l.Location)
}

func TestScanListingNullRentPrice(t *testing.T) {
	row := fakeRow{values: []any{
		"b1", "Porsche", "911", 2024, "Petrol", 4, "3.0s", 150000.0,
		nil, "buy", "available", false, "", "",
	}}

	l, err := scanListing(row)
	require.NoError(t, err)
	assert.Nil(t, l.RentPrice)
	assert.Equal(t, 150000.0, l.Price)
}
