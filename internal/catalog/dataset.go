package catalog

import "github.com/jjenkins/revera/internal/model"

func rent(p float64) *float64 { return &p }

// BuiltinListings is the showroom inventory shipped with the application.
func BuiltinListings() []model.Listing {
	return []model.Listing{
		{ID: "b1", Brand: "Porsche", Name: "911 Turbo S", Price: 350000, Image: "/static/cars/porsche2.jpg", Year: 2024, Fuel: "Gasoline", Seats: 2, Acceleration: "2.6s 0-60mph", Kind: model.KindBuy, Featured: true, Status: model.StatusAvailable},
		{ID: "b2", Brand: "Aston Martin", Name: "DB11", Price: 285000, Image: "/static/cars/aston.jpg", Year: 2024, Fuel: "Gasoline", Seats: 4, Acceleration: "3.1s 0-60mph", Kind: model.KindBuy, Status: model.StatusAvailable},
		{ID: "b3", Brand: "Ferrari", Name: "488 GTB", Price: 425000, Image: "/static/cars/ferrari.jpg", Year: 2023, Fuel: "Gasoline", Seats: 2, Acceleration: "3.0s 0-60mph", Kind: model.KindBuy, Featured: true, Status: model.StatusAvailable},
		{ID: "b4", Brand: "Lamborghini", Name: "Huracan EVO", Price: 475000, Image: "/static/cars/lamborghini2.png", Year: 2024, Fuel: "Gasoline", Seats: 2, Acceleration: "2.9s 0-60mph", Kind: model.KindBuy, Status: model.StatusAvailable},
		{ID: "b5", Brand: "BMW", Name: "M8 Competition", Price: 185000, Image: "/static/cars/bmw2.jpg", Year: 2023, Fuel: "Gasoline", Seats: 4, Acceleration: "3.1s 0-60mph", Kind: model.KindBuy, Status: model.StatusSold},
		{ID: "b6", Brand: "Mercedes", Name: "AMG GT R", Price: 295000, Image: "/static/cars/merc2.jpg", Year: 2024, Fuel: "Gasoline", Seats: 2, Acceleration: "3.5s 0-60mph", Kind: model.KindBuy, Status: model.StatusAvailable},

		{ID: "r1", Brand: "Porsche", Name: "911 Carrera", Price: 320000, RentPrice: rent(850), Image: "/static/cars/carrera.jpeg", Year: 2024, Fuel: "Gasoline", Seats: 2, Acceleration: "3.2s 0-60mph", Kind: model.KindRent, Featured: true, Status: model.StatusAvailable, Location: "Los Angeles"},
		{ID: "r2", Brand: "Aston Martin", Name: "V8 Vantage", Price: 265000, RentPrice: rent(750), Image: "/static/cars/vantage.jpg", Year: 2024, Fuel: "Gasoline", Seats: 2, Acceleration: "3.6s 0-60mph", Kind: model.KindRent, Status: model.StatusAvailable, Location: "Miami"},
		{ID: "r3", Brand: "Ferrari", Name: "F8 Spider", Price: 385000, RentPrice: rent(1200), Image: "/static/cars/spider.jpg", Year: 2023, Fuel: "Gasoline", Seats: 2, Acceleration: "2.9s 0-60mph", Kind: model.KindRent, Featured: true, Status: model.StatusRented, Location: "Las Vegas"},
		{ID: "r4", Brand: "Lamborghini", Name: "Gallardo", Price: 415000, RentPrice: rent(1100), Image: "/static/cars/lamborghini1.jpg", Year: 2024, Fuel: "Gasoline", Seats: 2, Acceleration: "3.1s 0-60mph", Kind: model.KindRent, Status: model.StatusAvailable, Location: "Miami"},
		{ID: "r5", Brand: "BMW", Name: "M4 Convertible", Price: 145000, RentPrice: rent(450), Image: "/static/cars/bmw3.jpg", Year: 2023, Fuel: "Gasoline", Seats: 4, Acceleration: "3.8s 0-60mph", Kind: model.KindRent, Status: model.StatusAvailable, Location: "New York"},
		{ID: "r6", Brand: "Mercedes", Name: "AMG C63 S", Price: 195000, RentPrice: rent(550), Image: "/static/cars/merc22.jpg", Year: 2024, Fuel: "Gasoline", Seats: 4, Acceleration: "3.7s 0-60mph", Kind: model.KindRent, Status: model.StatusAvailable, Location: "San Francisco"},
	}
}

// PriceBrackets are the priceRange facet options offered for each mode
func PriceBrackets(mode model.ListingKind) []Option {
	if mode == model.KindRent {
		return []Option{
			{Value: model.FacetAll, Label: "All Prices"},
			{Value: "0-500", Label: "Under $500/day"},
			{Value: "500-1000", Label: "$500 - $1,000/day"},
			{Value: "1000+", Label: "Over $1,000/day"},
		}
	}
	return []Option{
		{Value: model.FacetAll, Label: "All Prices"},
		{Value: "0-200000", Label: "Under $200k"},
		{Value: "200000-400000", Label: "$200k - $400k"},
		{Value: "400000+", Label: "Over $400k"},
	}
}

// SortOptions are the sort selector entries
func SortOptions() []Option {
	return []Option{
		{Value: string(model.SortPriceLow), Label: "Price: Low to High"},
		{Value: string(model.SortPriceHigh), Label: "Price: High to Low"},
		{Value: string(model.SortYear), Label: "Year: Newest First"},
		{Value: string(model.SortBrand), Label: "Brand: A to Z"},
	}
}
