package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"daycard/internal/card"
	"daycard/internal/store"
)

func newAddCmd() *cobra.Command {
	var subtitle, desc, color string

	// daycard add [day] <start>-<end>|allday <title>
	cmd := &cobra.Command{
		Use:   "add [day] <start>-<end>|allday <title>",
		Short: "Add an event to the local store (day defaults to today)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			ev, err := parseAddArgs(args, time.Now().In(a.loc))
			if err != nil {
				return err
			}
			ev.Subtitle = subtitle
			ev.Description = desc
			ev.Color = color

			st, err := a.openStore()
			if err != nil {
				return err
			}
			id, err := st.Add(cmd.Context(), ev)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added event #%d on %s\n", id, ev.Date)
			return nil
		},
	}
	cmd.Flags().StringVarP(&subtitle, "subtitle", "s", "", "Secondary line, e.g. a location")
	cmd.Flags().StringVar(&desc, "description", "", "Longer description")
	cmd.Flags().StringVar(&color, "color", "", "CSS background color")
	return cmd
}

// parseAddArgs splits "[day] <range> <title words...>" into a NewEvent. The
// first argument is taken as the day only when the second looks like a range.
func parseAddArgs(args []string, now time.Time) (store.NewEvent, error) {
	var ev store.NewEvent

	day := "today"
	if len(args) >= 3 && isRange(args[1]) {
		day, args = args[0], args[1:]
	}
	d, err := parseDay(day, now)
	if err != nil {
		return ev, err
	}
	ev.Date = d.Format(card.DateLayout)

	if !isRange(args[0]) {
		return ev, fmt.Errorf("invalid time range %q (want HH:MM-HH:MM or allday)", args[0])
	}
	if strings.EqualFold(args[0], "allday") {
		ev.AllDay = true
	} else {
		ev.StartTime, ev.EndTime, _ = strings.Cut(args[0], "-")
	}

	ev.Title = strings.Join(args[1:], " ")
	if ev.Title == "" {
		return ev, fmt.Errorf("title is required")
	}
	return ev, nil
}

func isRange(s string) bool {
	if strings.EqualFold(s, "allday") {
		return true
	}
	start, end, ok := strings.Cut(s, "-")
	return ok && strings.Contains(start, ":") && strings.Contains(end, ":")
}

// parseStoreRef accepts the "#<id>" printed by show, or a bare id.
func parseStoreRef(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(s, "#"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q (want the #id shown by daycard show)", s)
	}
	return id, nil
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <#id>",
		Short: "Remove an event from the local store by the #id shown by show",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseStoreRef(args[0])
			if err != nil {
				return err
			}

			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			st, err := a.openStore()
			if err != nil {
				return err
			}
			if err := st.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed event #%d\n", id)
			return nil
		},
	}
}
