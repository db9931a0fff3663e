package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"holidaze/internal/api"
	"holidaze/internal/availability"
	"holidaze/internal/booking"
	"holidaze/internal/httpapi"
	"holidaze/internal/metrics"
	"holidaze/internal/models"
	"holidaze/internal/report"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// maxListedRanges caps the booked ranges printed for a venue.
const maxListedRanges = 25

func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "login",
			Usage: "sign in and store the session",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "email", Required: true},
				&cli.StringFlag{Name: "password", EnvVars: []string{"HOLIDAZE_PASSWORD"}},
			},
			Action: loginCmd,
		},
		{Name: "logout", Usage: "clear the stored session", Action: logoutCmd},
		{
			Name:  "register",
			Usage: "create an account",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "name", Required: true},
				&cli.StringFlag{Name: "email", Required: true},
				&cli.StringFlag{Name: "password", EnvVars: []string{"HOLIDAZE_PASSWORD"}},
				&cli.BoolFlag{Name: "venue-manager"},
				&cli.StringFlag{Name: "avatar", Usage: "avatar image URL"},
			},
			Action: registerCmd,
		},
		{Name: "whoami", Usage: "show the stored session", Action: whoamiCmd},
		{Name: "profile", Usage: "show your profile and bookings", Action: profileCmd},
		{
			Name:  "avatar",
			Usage: "change your avatar",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "url", Required: true},
				&cli.StringFlag{Name: "alt"},
			},
			Action: avatarCmd,
		},
		{
			Name:  "venues",
			Usage: "list venues, newest first",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "page", Value: 1},
				&cli.IntFlag{Name: "limit", Value: 20},
			},
			Action: venuesCmd,
		},
		{Name: "venue", Usage: "show a venue and its booked dates", ArgsUsage: "VENUE_ID", Action: venueCmd},
		{Name: "search", Usage: "find venues by name, description or place", ArgsUsage: "QUERY", Action: searchCmd},
		{
			Name:      "check",
			Usage:     "check whether a stay is available",
			ArgsUsage: "VENUE_ID",
			Flags:     stayFlags(),
			Action:    checkCmd,
		},
		{
			Name:      "book",
			Usage:     "book a stay",
			ArgsUsage: "VENUE_ID",
			Flags:     append(stayFlags(), &cli.IntFlag{Name: "guests", Value: 1}),
			Action:    bookCmd,
		},
		{Name: "my-bookings", Usage: "list your bookings", Action: myBookingsCmd},
		{Name: "my-venues", Usage: "list the venues you manage", Action: myVenuesCmd},
		{
			Name:   "venue-create",
			Usage:  "create a venue from a YAML file",
			Flags:  []cli.Flag{&cli.PathFlag{Name: "file", Aliases: []string{"f"}, Required: true}},
			Action: venueCreateCmd,
		},
		{
			Name:      "venue-update",
			Usage:     "update a venue from a YAML file",
			ArgsUsage: "VENUE_ID",
			Flags:     []cli.Flag{&cli.PathFlag{Name: "file", Aliases: []string{"f"}, Required: true}},
			Action:    venueUpdateCmd,
		},
		{Name: "venue-delete", Usage: "delete one of your venues", ArgsUsage: "VENUE_ID", Action: venueDeleteCmd},
		{
			Name:      "venue-bookings",
			Usage:     "list upcoming bookings of one of your venues",
			ArgsUsage: "VENUE_ID",
			Flags:     []cli.Flag{&cli.IntFlag{Name: "limit"}},
			Action:    venueBookingsCmd,
		},
		{
			Name:   "export-bookings",
			Usage:  "write the bookings of your venues to an Excel file",
			Flags:  []cli.Flag{&cli.PathFlag{Name: "out", Aliases: []string{"o"}, Value: "bookings.xlsx"}},
			Action: exportBookingsCmd,
		},
		{
			Name:   "serve",
			Usage:  "run the local availability API",
			Action: serveCmd,
		},
	}
}

func stayFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "from", Usage: "check-in date, YYYY-MM-DD"},
		&cli.StringFlag{Name: "to", Usage: "check-out date, YYYY-MM-DD"},
	}
}

func venueArg(c *cli.Context) (string, error) {
	id := strings.TrimSpace(c.Args().First())
	if id == "" {
		return "", fmt.Errorf("%s: venue id is required", c.Command.Name)
	}
	return id, nil
}

func loginCmd(c *cli.Context) error {
	a := fromContext(c)
	sess, err := a.account.Login(c.Context, c.String("email"), c.String("password"))
	if err != nil {
		return err
	}
	role := "customer"
	if sess.VenueManager {
		role = "venue manager"
	}
	fmt.Fprintf(c.App.Writer, "Logged in as %s (%s)\n", sess.Name, role)
	return nil
}

func logoutCmd(c *cli.Context) error {
	if err := fromContext(c).account.Logout(c.Context); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "Logged out")
	return nil
}

func registerCmd(c *cli.Context) error {
	req := models.RegisterRequest{
		Name:         c.String("name"),
		Email:        c.String("email"),
		Password:     c.String("password"),
		VenueManager: c.Bool("venue-manager"),
	}
	if u := c.String("avatar"); u != "" {
		req.Avatar = &models.Media{URL: u}
	}
	p, err := fromContext(c).account.Register(c.Context, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Registered %s. You can now log in.\n", p.Name)
	return nil
}

func whoamiCmd(c *cli.Context) error {
	sess, err := fromContext(c).store.Get(c.Context)
	if err != nil {
		return err
	}
	if !sess.LoggedIn() {
		fmt.Fprintln(c.App.Writer, "Not logged in")
		return nil
	}
	fmt.Fprintf(c.App.Writer, "%s\nvenue manager: %t\n", sess.Name, sess.VenueManager)
	if sess.AvatarURL != "" {
		fmt.Fprintf(c.App.Writer, "avatar: %s\n", sess.AvatarURL)
	}
	return nil
}

func profileCmd(c *cli.Context) error {
	ov, err := fromContext(c).account.LoadProfile(c.Context)
	if err != nil {
		return err
	}
	w := c.App.Writer
	fmt.Fprintf(w, "%s <%s>\n", ov.Profile.Name, ov.Profile.Email)
	if ov.Profile.Bio != "" {
		fmt.Fprintln(w, ov.Profile.Bio)
	}
	if ov.Profile.VenueManager {
		fmt.Fprintln(w, "Venue manager")
	}
	fmt.Fprintln(w)
	printBookings(w, ov.Bookings)
	return nil
}

func avatarCmd(c *cli.Context) error {
	p, err := fromContext(c).account.UpdateAvatar(c.Context, c.String("url"), c.String("alt"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Avatar updated for %s\n", p.Name)
	return nil
}

func venuesCmd(c *cli.Context) error {
	page, err := fromContext(c).client.ListVenues(c.Context, api.ListOptions{Page: c.Int("page"), Limit: c.Int("limit")})
	if err != nil {
		return err
	}
	printVenues(c.App.Writer, page.Venues)
	fmt.Fprintf(c.App.Writer, "page %d of %d\n", page.Meta.CurrentPage, page.Meta.PageCount)
	return nil
}

func venueCmd(c *cli.Context) error {
	id, err := venueArg(c)
	if err != nil {
		return err
	}
	v, err := fromContext(c).client.GetVenue(c.Context, id, api.VenueOptions{Bookings: true, Owner: true})
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "%s (%s)\n", v.Name, v.ID)
	fmt.Fprintf(w, "%s, %s\n", v.Location.City, v.Location.Country)
	fmt.Fprintf(w, "%.2f per night, up to %d guests, rating %.1f\n", v.Price, v.MaxGuests, v.Rating)
	if v.Owner != nil {
		fmt.Fprintf(w, "hosted by %s\n", v.Owner.Name)
	}
	if v.Description != "" {
		fmt.Fprintln(w, v.Description)
	}

	ranges := availability.BookedRanges(v.BookingRanges())
	if len(ranges) == 0 {
		fmt.Fprintln(w, "No bookings yet.")
		return nil
	}
	fmt.Fprintln(w, "Booked:")
	for i, r := range ranges {
		if i == maxListedRanges {
			fmt.Fprintf(w, "  ...and %d more\n", len(ranges)-maxListedRanges)
			break
		}
		fmt.Fprintf(w, "  %s → %s\n", r.From, r.To)
	}
	return nil
}

func searchCmd(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	found, err := fromContext(c).search.Search(c.Context, query)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		fmt.Fprintln(c.App.Writer, "No venues matched.")
		return nil
	}
	printVenues(c.App.Writer, found)
	return nil
}

func checkCmd(c *cli.Context) error {
	id, err := venueArg(c)
	if err != nil {
		return err
	}
	q, err := fromContext(c).booking.Check(c.Context, id, c.String("from"), c.String("to"))
	if err != nil {
		return err
	}

	w := c.App.Writer
	switch {
	case q.Verdict.Available():
		fmt.Fprintf(w, "%s is available: %d nights, total %.2f\n", q.Venue.Name, q.Nights, q.Total)
	case q.Verdict.Status == availability.StatusIncomplete:
		fmt.Fprintln(w, "Select both check-in and check-out dates.")
	default:
		fmt.Fprintln(w, q.Verdict.Message)
	}
	return nil
}

func bookCmd(c *cli.Context) error {
	id, err := venueArg(c)
	if err != nil {
		return err
	}
	created, err := fromContext(c).booking.Book(c.Context, booking.Request{
		VenueID:  id,
		DateFrom: c.String("from"),
		DateTo:   c.String("to"),
		Guests:   c.Int("guests"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Booked %s → %s for %d guests (booking %s)\n",
		availability.Format(created.DateFrom), availability.Format(created.DateTo), created.Guests, created.ID)
	return nil
}

func myBookingsCmd(c *cli.Context) error {
	ov, err := fromContext(c).account.LoadProfile(c.Context)
	if err != nil {
		return err
	}
	printBookings(c.App.Writer, ov.Bookings)
	return nil
}

func myVenuesCmd(c *cli.Context) error {
	list, err := fromContext(c).manager.MyVenues(c.Context)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(c.App.Writer, "You have no venues yet.")
		return nil
	}
	for _, v := range list {
		fmt.Fprintf(c.App.Writer, "%s  %s  (%d bookings)\n", v.ID, v.Name, len(v.Bookings))
	}
	return nil
}

func readVenueInput(path string) (models.VenueInput, error) {
	var in models.VenueInput
	data, err := os.ReadFile(path)
	if err != nil {
		return in, fmt.Errorf("read venue file: %w", err)
	}
	if err := yaml.Unmarshal(data, &in); err != nil {
		return in, fmt.Errorf("parse venue file: %w", err)
	}
	return in, nil
}

func venueCreateCmd(c *cli.Context) error {
	in, err := readVenueInput(c.Path("file"))
	if err != nil {
		return err
	}
	v, err := fromContext(c).manager.Create(c.Context, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Created %s (%s)\n", v.Name, v.ID)
	return nil
}

func venueUpdateCmd(c *cli.Context) error {
	id, err := venueArg(c)
	if err != nil {
		return err
	}
	in, err := readVenueInput(c.Path("file"))
	if err != nil {
		return err
	}
	v, err := fromContext(c).manager.Update(c.Context, id, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Updated %s (%s)\n", v.Name, v.ID)
	return nil
}

func venueDeleteCmd(c *cli.Context) error {
	id, err := venueArg(c)
	if err != nil {
		return err
	}
	if err := fromContext(c).manager.Delete(c.Context, id); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Deleted %s\n", id)
	return nil
}

func venueBookingsCmd(c *cli.Context) error {
	id, err := venueArg(c)
	if err != nil {
		return err
	}
	a := fromContext(c)
	limit := c.Int("limit")
	if limit <= 0 {
		limit = a.cfg.UpcomingLimit()
	}
	v, list, err := a.manager.UpcomingBookings(c.Context, id, limit)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s\n", v.Name)
	printBookings(c.App.Writer, list)
	return nil
}

func exportBookingsCmd(c *cli.Context) error {
	list, err := fromContext(c).manager.MyVenues(c.Context)
	if err != nil {
		return err
	}
	path := c.Path("out")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.ExportBookings(f, list); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Wrote %d venues to %s\n", len(list), path)
	return nil
}

func serveCmd(c *cli.Context) error {
	a := fromContext(c)
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := httpapi.NewServer(a.booking, a.client, a.store, &a.logger)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, fmt.Sprintf(":%d", a.cfg.Monitoring.HealthCheckPort))
	})
	if a.cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		g.Go(func() error {
			return startMetricsServer(gctx, a.cfg.Monitoring.PrometheusPort, &a.logger)
		})
	}
	return g.Wait()
}

func printVenues(w io.Writer, list []models.Venue) {
	for _, v := range list {
		place := v.Location.City
		if place == "" {
			place = v.Location.Country
		}
		fmt.Fprintf(w, "%s  %-30s %-16s %8.2f  max %d\n", v.ID, v.Name, place, v.Price, v.MaxGuests)
	}
}

func printBookings(w io.Writer, list []models.Booking) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No bookings.")
		return
	}
	for _, b := range list {
		name := ""
		if b.Venue != nil {
			name = b.Venue.Name
		} else if b.Customer != nil {
			name = b.Customer.Name
		}
		fmt.Fprintf(w, "%s → %s  %d nights  %d guests  %s\n",
			availability.Format(b.DateFrom), availability.Format(b.DateTo), b.Nights(), b.Guests, name)
	}
}
