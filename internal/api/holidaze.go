package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"holidaze/internal/models"
)

const venueListCachePattern = "venues:list:*"

// ListOptions select one page of the venue list.
type ListOptions struct {
	Page      int
	Limit     int
	Sort      string
	SortOrder string
	Owner     bool
	Bookings  bool
}

// VenuePage is one page of venues with its paging block.
type VenuePage struct {
	Venues []models.Venue  `json:"venues"`
	Meta   models.PageMeta `json:"meta"`
}

// VenueOptions choose the relations embedded in a venue.
type VenueOptions struct {
	Bookings bool
	Owner    bool
}

func (o VenueOptions) query() url.Values {
	q := url.Values{}
	if o.Bookings {
		q.Set("_bookings", "true")
	}
	if o.Owner {
		q.Set("_owner", "true")
	}
	return q
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	var out models.AuthResult
	err := c.do(ctx, call{
		endpoint: "auth.login",
		method:   http.MethodPost,
		path:     "/auth/login",
		query:    url.Values{"_holidaze": {"true"}},
		body:     map[string]string{"email": email, "password": password},
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.Profile, error) {
	var out models.Profile
	err := c.do(ctx, call{
		endpoint: "auth.register",
		method:   http.MethodPost,
		path:     "/auth/register",
		body:     req,
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProfile fetches a profile by name.
func (c *Client) GetProfile(ctx context.Context, name string) (*models.Profile, error) {
	var out models.Profile
	err := c.do(ctx, call{
		endpoint: "profiles.get",
		method:   http.MethodGet,
		path:     "/holidaze/profiles/" + url.PathEscape(name),
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile changes avatar, banner, bio or the venue manager flag.
func (c *Client) UpdateProfile(ctx context.Context, name string, upd models.ProfileUpdate) (*models.Profile, error) {
	var out models.Profile
	err := c.do(ctx, call{
		endpoint: "profiles.update",
		method:   http.MethodPut,
		path:     "/holidaze/profiles/" + url.PathEscape(name),
		body:     upd,
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProfileBookings lists the bookings made by a profile, with their venues.
func (c *Client) GetProfileBookings(ctx context.Context, name string) ([]models.Booking, error) {
	var out []models.Booking
	err := c.do(ctx, call{
		endpoint: "profiles.bookings",
		method:   http.MethodGet,
		path:     "/holidaze/profiles/" + url.PathEscape(name) + "/bookings",
		query:    url.Values{"_venue": {"true"}},
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetProfileVenues lists the venues a manager owns, with their bookings.
func (c *Client) GetProfileVenues(ctx context.Context, name string) ([]models.Venue, error) {
	var out []models.Venue
	err := c.do(ctx, call{
		endpoint: "profiles.venues",
		method:   http.MethodGet,
		path:     "/holidaze/profiles/" + url.PathEscape(name) + "/venues",
		query:    url.Values{"_bookings": {"true"}},
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListVenues fetches one page of venues. Pages are cached in Redis when configured.
func (c *Client) ListVenues(ctx context.Context, opts ListOptions) (*VenuePage, error) {
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Sort == "" {
		opts.Sort = "created"
	}
	if opts.SortOrder == "" {
		opts.SortOrder = "desc"
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(opts.Page))
	q.Set("limit", strconv.Itoa(opts.Limit))
	q.Set("sort", opts.Sort)
	q.Set("sortOrder", opts.SortOrder)
	if opts.Owner {
		q.Set("_owner", "true")
	}
	if opts.Bookings {
		q.Set("_bookings", "true")
	}

	cacheKey := "venues:list:" + q.Encode()
	var page VenuePage
	if c.readCache(ctx, cacheKey, &page) {
		return &page, nil
	}

	err := c.do(ctx, call{
		endpoint: "venues.list",
		method:   http.MethodGet,
		path:     "/holidaze/venues",
		query:    q,
		out:      &page.Venues,
		meta:     &page.Meta,
	})
	if err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, page)
	return &page, nil
}

// GetVenue fetches a venue. It is never served from cache, so embedded
// bookings are current.
func (c *Client) GetVenue(ctx context.Context, id string, opts VenueOptions) (*models.Venue, error) {
	if id == "" {
		return nil, fmt.Errorf("venue id is required")
	}
	var out models.Venue
	err := c.do(ctx, call{
		endpoint: "venues.get",
		method:   http.MethodGet,
		path:     "/holidaze/venues/" + url.PathEscape(id),
		query:    opts.query(),
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateVenue publishes a new venue owned by the signed-in manager.
func (c *Client) CreateVenue(ctx context.Context, in models.VenueInput) (*models.Venue, error) {
	var out models.Venue
	err := c.do(ctx, call{
		endpoint: "venues.create",
		method:   http.MethodPost,
		path:     "/holidaze/venues",
		body:     in,
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	c.invalidateCache(ctx, venueListCachePattern)
	return &out, nil
}

// UpdateVenue replaces the editable fields of a venue.
func (c *Client) UpdateVenue(ctx context.Context, id string, in models.VenueInput) (*models.Venue, error) {
	var out models.Venue
	err := c.do(ctx, call{
		endpoint: "venues.update",
		method:   http.MethodPut,
		path:     "/holidaze/venues/" + url.PathEscape(id),
		body:     in,
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	c.invalidateCache(ctx, venueListCachePattern)
	return &out, nil
}

// DeleteVenue removes a venue.
func (c *Client) DeleteVenue(ctx context.Context, id string) error {
	err := c.do(ctx, call{
		endpoint: "venues.delete",
		method:   http.MethodDelete,
		path:     "/holidaze/venues/" + url.PathEscape(id),
	})
	if err != nil {
		return err
	}
	c.invalidateCache(ctx, venueListCachePattern)
	return nil
}

// CreateBooking reserves a venue for the signed-in user.
func (c *Client) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	var out models.Booking
	err := c.do(ctx, call{
		endpoint: "bookings.create",
		method:   http.MethodPost,
		path:     "/holidaze/bookings",
		body:     req,
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
