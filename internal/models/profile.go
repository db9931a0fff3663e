package models

// Profile is a Holidaze user.
type Profile struct {
	Name         string  `json:"name"`
	Email        string  `json:"email,omitempty"`
	Bio          string  `json:"bio,omitempty"`
	Avatar       *Media  `json:"avatar,omitempty"`
	Banner       *Media  `json:"banner,omitempty"`
	VenueManager bool    `json:"venueManager"`
	Count        *Counts `json:"_count,omitempty"`
}

// Counts are the relation counters the API adds on request.
type Counts struct {
	Venues   int `json:"venues,omitempty"`
	Bookings int `json:"bookings,omitempty"`
}

// AuthResult is the data returned by /auth/login.
type AuthResult struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Avatar       *Media `json:"avatar,omitempty"`
	Banner       *Media `json:"banner,omitempty"`
	AccessToken  string `json:"accessToken"`
	VenueManager *bool  `json:"venueManager,omitempty"`
}

// RegisterRequest is the body of /auth/register.
type RegisterRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	VenueManager bool   `json:"venueManager"`
	Avatar       *Media `json:"avatar,omitempty"`
}

// ProfileUpdate is the body of PUT /holidaze/profiles/{name}. Nil fields are omitted.
type ProfileUpdate struct {
	Bio          *string `json:"bio,omitempty"`
	Avatar       *Media  `json:"avatar,omitempty"`
	Banner       *Media  `json:"banner,omitempty"`
	VenueManager *bool   `json:"venueManager,omitempty"`
}

// PageMeta is the paging block of list responses.
type PageMeta struct {
	IsFirstPage  bool `json:"isFirstPage"`
	IsLastPage   bool `json:"isLastPage"`
	CurrentPage  int  `json:"currentPage"`
	PreviousPage *int `json:"previousPage"`
	NextPage     *int `json:"nextPage"`
	PageCount    int  `json:"pageCount"`
	TotalCount   int  `json:"totalCount"`
}
