package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"daycard/internal/capture"
	"daycard/internal/card"
	appLog "daycard/internal/log"
	"daycard/internal/model"
	"daycard/internal/schedule"
	"daycard/internal/web"
)

// viewFlags are the card state flags shared by render and show.
type viewFlags struct {
	date   string
	view   string
	format string
	now    string
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.date, "date", "d", "today", "Day to show (YYYY-MM-DD, today, tomorrow, yesterday)")
	cmd.Flags().StringVar(&f.view, "view", "", "timeline or list (defaults to config)")
	cmd.Flags().StringVar(&f.format, "fmt", "", "Clock format, 12 or 24 (defaults to config)")
	cmd.Flags().StringVar(&f.now, "now", "", "Override the current time (HH:MM today, or YYYY-MM-DDTHH:MM)")
}

// buildCard loads the requested day and builds its view model.
func (f *viewFlags) buildCard(ctx context.Context, a *app) (card.Card, error) {
	now, err := parseNow(f.now, time.Now().In(a.loc))
	if err != nil {
		return card.Card{}, err
	}
	day, err := parseDay(f.date, now)
	if err != nil {
		return card.Card{}, err
	}

	view := card.ParseView(a.cfg.View.DefaultView)
	if f.view != "" {
		view = card.ParseView(f.view)
	}
	use24 := a.cfg.View.Use24Hour
	switch f.format {
	case "24":
		use24 = true
	case "12":
		use24 = false
	case "":
	default:
		return card.Card{}, fmt.Errorf("invalid --fmt %q (want 12 or 24)", f.format)
	}

	src, err := a.buildSource()
	if err != nil {
		return card.Card{}, err
	}
	events, err := src.DayEvents(ctx, day)
	if err != nil {
		return card.Card{}, err
	}
	return card.Build(events, card.NewState(day, view, use24), now, web.CardOptions(a.cfg)), nil
}

// parseNow accepts "", "HH:MM" (on the current day) or "YYYY-MM-DDTHH:MM".
func parseNow(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04", s, now.Location()); err == nil {
		return t, nil
	}
	m, err := schedule.ParseMinutes(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now %q: %w", s, err)
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, m, 0, 0, now.Location()), nil
}

func newRenderCmd() *cobra.Command {
	var (
		flags  viewFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the card page once as HTML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			c, err := flags.buildCard(cmd.Context(), a)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				return web.RenderHTML(cmd.OutOrStdout(), c)
			}

			var buf bytes.Buffer
			if err := web.RenderHTML(&buf, c); err != nil {
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			appLog.Info("card rendered", "output", output, "date", c.State.Date.Format(card.DateLayout), "bytes", buf.Len())
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func newShowCmd() *cobra.Command {
	var (
		flags  viewFlags
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the day's schedule as text or layout JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			c, err := flags.buildCard(cmd.Context(), a)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(web.ScheduleJSON(c, web.CardOptions(a.cfg).Layout.Policy))
			}
			return printCard(cmd.OutOrStdout(), c)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the layout as JSON")
	return cmd
}

// printCard writes a plain-text rendering of c.
func printCard(out io.Writer, c card.Card) error {
	title := c.Title
	if c.IsToday {
		title += " (today)"
	}
	fmt.Fprintln(out, title)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if c.State.View == card.ViewList {
		for _, row := range c.List {
			fmt.Fprintf(w, "  [%d]\t%s\t%s\t%s\t%s\n", row.ID, storeRef(row.CalendarEvent), row.TimeText, row.Title, row.Subtitle)
		}
		if len(c.List) == 0 {
			fmt.Fprintln(w, "  No events")
		}
		return w.Flush()
	}

	for _, row := range c.AllDay {
		fmt.Fprintf(w, "  [%d]\t%s\t%s\t%s\t%s\n", row.ID, storeRef(row.CalendarEvent), row.TimeText, row.Title, row.Subtitle)
	}
	for _, b := range c.Timed {
		fmt.Fprintf(w, "  [%d]\t%s\t%s\t%s\ttop=%s height=%s left=%s%s\n",
			b.ID, storeRef(b.CalendarEvent), b.TimeRange, b.Title, num(b.Top), num(b.Height), num(b.Left), b.LeftUnit)
	}
	if len(c.AllDay) == 0 && len(c.Timed) == 0 {
		fmt.Fprintln(w, "  No events")
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if c.Layout.Dropped > 0 {
		fmt.Fprintf(out, "%d event(s) without times not shown on the timeline\n", c.Layout.Dropped)
	}
	if c.Scroll != nil {
		fmt.Fprintf(out, "scroll: event %d at %spx\n", c.Scroll.EventID, num(c.Scroll.Offset))
	}
	return nil
}

// storeRef is the "#<id>" that daycard rm accepts, or "-" for events that
// did not come from the local store.
func storeRef(ev model.CalendarEvent) string {
	if ev.StoreID == 0 {
		return "-"
	}
	return "#" + strconv.Itoa(ev.StoreID)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func newCaptureCmd() *cobra.Command {
	var url, output string
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture the running card as a PNG with headless Chromium",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			if url != "" {
				a.cfg.Capture.URL = url
			}
			if output != "" {
				a.cfg.Capture.Output = output
			}
			if err := capture.CaptureCardPNG(cmd.Context(), captureOptions(a)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.cfg.Capture.Output)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Page to capture (defaults to config)")
	cmd.Flags().StringVarP(&output, "out", "o", "", "PNG output path (defaults to config)")
	return cmd
}

func captureOptions(a *app) capture.Options {
	opts := capture.Options{
		URL:        a.cfg.Capture.URL,
		OutputPath: a.cfg.Capture.Output,
		Width:      a.cfg.Capture.Width,
		Height:     a.cfg.Capture.Height,
	}
	if a.cfg.BasicAuth != nil {
		opts.Username = a.cfg.BasicAuth.Username
		opts.Password = a.cfg.BasicAuth.Password
	}
	return opts
}
