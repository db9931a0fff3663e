package models

import "time"

// Media is an image attached to a venue, profile avatar or banner.
type Media struct {
	URL string `json:"url" yaml:"url"`
	Alt string `json:"alt,omitempty" yaml:"alt,omitempty"`
}

// Amenities are the venue feature flags.
type Amenities struct {
	Wifi      bool `json:"wifi" yaml:"wifi"`
	Parking   bool `json:"parking" yaml:"parking"`
	Breakfast bool `json:"breakfast" yaml:"breakfast"`
	Pets      bool `json:"pets" yaml:"pets"`
}

// Location is the venue address.
type Location struct {
	Address   string  `json:"address,omitempty" yaml:"address,omitempty"`
	City      string  `json:"city,omitempty" yaml:"city,omitempty"`
	Zip       string  `json:"zip,omitempty" yaml:"zip,omitempty"`
	Country   string  `json:"country,omitempty" yaml:"country,omitempty"`
	Continent string  `json:"continent,omitempty" yaml:"continent,omitempty"`
	Lat       float64 `json:"lat" yaml:"lat"`
	Lng       float64 `json:"lng" yaml:"lng"`
}

// Venue is a bookable property as returned by the API.
type Venue struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Media       []Media   `json:"media"`
	Price       float64   `json:"price"`
	MaxGuests   int       `json:"maxGuests"`
	Rating      float64   `json:"rating"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
	Meta        Amenities `json:"meta"`
	Location    Location  `json:"location"`
	Owner       *Profile  `json:"owner,omitempty"`
	Bookings    []Booking `json:"bookings,omitempty"`
	Count       *Counts   `json:"_count,omitempty"`
}

// VenueInput is the body of a create or update venue request.
type VenueInput struct {
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Media       []Media   `json:"media,omitempty" yaml:"media,omitempty"`
	Price       float64   `json:"price" yaml:"price"`
	MaxGuests   int       `json:"maxGuests" yaml:"maxGuests"`
	Rating      float64   `json:"rating,omitempty" yaml:"rating,omitempty"`
	Meta        Amenities `json:"meta" yaml:"meta"`
	Location    Location  `json:"location" yaml:"location"`
}

// OwnedBy reports whether the profile name is the venue owner.
func (v *Venue) OwnedBy(name string) bool {
	return v.Owner != nil && name != "" && v.Owner.Name == name
}

// Total is the price of a stay of the given number of nights.
func (v *Venue) Total(nights int) float64 {
	if nights <= 0 {
		return 0
	}
	return v.Price * float64(nights)
}
