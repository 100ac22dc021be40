// Package feed imports events from subscribed ICS calendars and exports the
// planner calendar as ICS.
package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "github.com/Tbsheff/notion-clone/internal/log"
	"github.com/Tbsheff/notion-clone/internal/storage/models"
)

// maxFeedBytes bounds a single download.
const maxFeedBytes = 10 << 20

// Parser downloads and parses ICS feeds.
type Parser struct {
	httpClient *http.Client
}

// NewParser creates a new ICS parser.
func NewParser() *Parser {
	return &Parser{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewParserWithClient uses client for downloads.
func NewParserWithClient(client *http.Client) *Parser {
	return &Parser{httpClient: client}
}

// Fetch downloads a feed body. webcal:// URLs are fetched over https.
func (p *Parser) Fetch(ctx context.Context, url string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(url, "webcal://"); ok {
		url = "https://" + rest
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading feed: %w", err)
	}
	if len(body) > maxFeedBytes {
		return nil, fmt.Errorf("feed larger than %d bytes", maxFeedBytes)
	}
	return body, nil
}

// FetchAndParse downloads and parses the feed's events.
func (p *Parser) FetchAndParse(ctx context.Context, feed models.Feed) ([]models.CalendarEvent, error) {
	body, err := p.Fetch(ctx, feed.URL)
	if err != nil {
		return nil, err
	}
	return p.Parse(feed, body)
}

// Parse converts the VEVENTs of an ICS payload into events owned by the
// feed's owner. Events are keyed by "<feed id>/<UID>". Overrides of
// recurring instances are skipped and recurring masters are imported once,
// at their first occurrence. VEVENTs missing a UID or DTSTART are logged
// and dropped.
func (p *Parser) Parse(feed models.Feed, body []byte) ([]models.CalendarEvent, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing ICS: %w", err)
	}

	events := make([]models.CalendarEvent, 0)
	seen := make(map[string]bool)
	for _, ve := range cal.Events() {
		if ve.GetProperty(ical.ComponentProperty("RECURRENCE-ID")) != nil {
			continue
		}
		e, err := convertEvent(feed, ve)
		if err != nil {
			appLog.Debug("skipping vevent", "feed_id", feed.ID, "error", err.Error())
			continue
		}
		if seen[*e.SourceID] {
			continue
		}
		seen[*e.SourceID] = true
		events = append(events, e)
	}
	return events, nil
}

func convertEvent(feed models.Feed, ve *ical.VEvent) (models.CalendarEvent, error) {
	var e models.CalendarEvent

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || strings.TrimSpace(uid.Value) == "" {
		return e, errors.New("missing UID")
	}
	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return e, errors.New("missing DTSTART")
	}

	allDay := !strings.Contains(dtStart.Value, "T")
	if vs, ok := dtStart.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		allDay = true
	}

	var start, end time.Time
	var err error
	if allDay {
		start, err = ve.GetAllDayStartAt()
	} else {
		start, err = ve.GetStartAt()
	}
	if err != nil {
		return e, fmt.Errorf("DTSTART: %w", err)
	}

	if ve.GetProperty(ical.ComponentPropertyDtEnd) != nil {
		if allDay {
			end, err = ve.GetAllDayEndAt()
		} else {
			end, err = ve.GetEndAt()
		}
	}
	switch {
	case err != nil || end.IsZero():
		end = start
		if allDay {
			end = start.AddDate(0, 0, 1)
		}
	case end.Before(start):
		end = start
	}

	sourceID := feed.ID + "/" + strings.TrimSpace(uid.Value)
	e = models.CalendarEvent{
		OwnerID:   feed.OwnerID,
		Title:     "(untitled)",
		StartTime: start,
		EndTime:   end,
		AllDay:    allDay,
		CourseID:  feed.CourseID,
		Source:    models.SourceICS,
		SourceID:  &sourceID,
		FeedID:    &feed.ID,
	}
	if prop := ve.GetProperty(ical.ComponentPropertySummary); prop != nil && strings.TrimSpace(prop.Value) != "" {
		e.Title = strings.TrimSpace(unescapeText(prop.Value))
	}
	if prop := ve.GetProperty(ical.ComponentPropertyDescription); prop != nil && prop.Value != "" {
		v := unescapeText(prop.Value)
		e.Description = &v
	}
	if prop := ve.GetProperty(ical.ComponentPropertyLocation); prop != nil && prop.Value != "" {
		v := unescapeText(prop.Value)
		e.Location = &v
	}
	return e, nil
}

var textUnescaper = strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)

// unescapeText reverses RFC 5545 TEXT escaping.
func unescapeText(s string) string {
	return textUnescaper.Replace(s)
}
