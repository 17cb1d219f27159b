package service

import (
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sadopc/trainr/internal/catalog"
	"github.com/sadopc/trainr/internal/ledger"
	"github.com/sadopc/trainr/internal/store"
)

// ProgramStart returns the configured first day of week 1.
func (s *Service) ProgramStart() (time.Time, bool) {
	v, err := s.settings.GetSetting(store.SettingProgramStart)
	if err != nil || v == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(ledger.DateLayout, v, time.Local)
	if err != nil {
		log.Warnf("ignoring malformed program start %q", v)
		return time.Time{}, false
	}
	return t, true
}

func (s *Service) SetProgramStart(t time.Time) error {
	v := t.Format(ledger.DateLayout)
	if err := s.settings.SetSetting(store.SettingProgramStart, v); err != nil {
		return fmt.Errorf("set program start: %w", err)
	}
	log.Infof("program start set to %s", v)
	return nil
}

// ProgramDay maps a moment onto the program calendar. Days before the start count as
// week 1 day 1; days after the last week stay on its final day.
func (s *Service) ProgramDay(at time.Time) (week, day int) {
	start, ok := s.ProgramStart()
	if !ok {
		return 1, 1
	}
	return programDay(start, at)
}

func programDay(start, at time.Time) (week, day int) {
	days := daysBetween(start, at)
	if days < 0 {
		return 1, 1
	}
	if days >= catalog.ProgramWeeks*7 {
		return catalog.ProgramWeeks, 7
	}
	return days/7 + 1, days%7 + 1
}

// daysBetween counts calendar days from a to b in b's location, ignoring DST shifts.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from) / (24 * time.Hour))
}

// CurrentWeek is the program week containing today.
func (s *Service) CurrentWeek() int {
	week, _ := s.ProgramDay(s.now())
	return week
}

// WeekStart is the first day of a calendar week in the daily views. Monday unless set to Sunday.
func (s *Service) WeekStart() time.Weekday {
	v, err := s.settings.GetSetting(store.SettingWeekStart)
	if err == nil && strings.EqualFold(strings.TrimSpace(v), "sunday") {
		return time.Sunday
	}
	return time.Monday
}

func (s *Service) SetWeekStart(d time.Weekday) error {
	if d != time.Monday && d != time.Sunday {
		return fmt.Errorf("week start must be monday or sunday, got %s", d)
	}
	return s.settings.SetSetting(store.SettingWeekStart, strings.ToLower(d.String()))
}

// CalendarWeek returns the first and last day of the calendar week containing at.
func (s *Service) CalendarWeek(at time.Time) (from, to time.Time) {
	y, m, d := at.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, at.Location())
	back := (int(day.Weekday()) - int(s.WeekStart()) + 7) % 7
	from = day.AddDate(0, 0, -back)
	return from, from.AddDate(0, 0, 6)
}

// Now is the service clock's current time.
func (s *Service) Now() time.Time { return s.now() }
