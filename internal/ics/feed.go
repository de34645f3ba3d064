package ics

import (
	"context"
	"time"

	"daycard/internal/model"
)

// Feed describes a single ICS subscription.
type Feed struct {
	ID    string
	Name  string
	URL   string
	Color string
}

// DefaultColor is used for feeds without a configured color.
const DefaultColor = "steelblue"

// FeedSource serves one feed's events for a day. It implements source.Source.
type FeedSource struct {
	feed    Feed
	fetcher *Fetcher
	loc     *time.Location
}

// NewFeedSource binds a feed to a fetcher. loc is the wall clock used for
// "HH:MM" conversion; nil means time.Local.
func NewFeedSource(feed Feed, fetcher *Fetcher, loc *time.Location) *FeedSource {
	if feed.ID == "" {
		feed.ID = feed.Name
	}
	if feed.ID == "" {
		feed.ID = redactURL(feed.URL)
	}
	if feed.Color == "" {
		feed.Color = DefaultColor
	}
	if loc == nil {
		loc = time.Local
	}
	return &FeedSource{feed: feed, fetcher: fetcher, loc: loc}
}

func (s *FeedSource) Name() string { return "ics:" + s.feed.ID }

// DayEvents fetches (or reuses) the feed body and maps it onto day.
func (s *FeedSource) DayEvents(ctx context.Context, day time.Time) ([]model.CalendarEvent, error) {
	body, _, err := s.fetcher.Fetch(ctx, s.feed)
	if err != nil {
		return nil, err
	}
	parsed, err := ParseICS(s.feed.ID, body)
	if err != nil {
		return nil, err
	}
	return EventsOn(parsed, day, s.loc, s.feed.Color), nil
}
