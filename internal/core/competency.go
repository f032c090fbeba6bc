// Package core holds the ledger's domain types and validation rules.
//
// This file implements the accounting period ("competency") a record
// belongs to. The canonical wire format is MM/YYYY with a two-digit
// month and a four-digit year; the exact string is the join key used
// by every filter and by month closure, so formatting goes through
// this type only.
package core

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Competency is an accounting period in MM/YYYY form.
type Competency string

var ErrInvalidCompetency = errors.New("invalid competency, want MM/YYYY")

// CompetencyOf returns the competency of a calendar date.
func CompetencyOf(t time.Time) Competency {
	return Competency(fmt.Sprintf("%02d/%04d", int(t.Month()), t.Year()))
}

// NewCompetency builds a competency from a month and year.
func NewCompetency(month, year int) Competency {
	return Competency(fmt.Sprintf("%02d/%04d", month, year))
}

// ParseCompetency validates s and returns it as a Competency.
func ParseCompetency(s string) (Competency, error) {
	c := Competency(s)
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}

func (c Competency) Validate() error {
	_, _, err := c.parts()
	return err
}

func (c Competency) parts() (month, year int, err error) {
	if len(c) != 7 || c[2] != '/' {
		return 0, 0, ErrInvalidCompetency
	}
	for i, r := range c {
		if i == 2 {
			continue
		}
		if r < '0' || r > '9' {
			return 0, 0, ErrInvalidCompetency
		}
	}
	month, err = strconv.Atoi(string(c[0:2]))
	if err != nil {
		return 0, 0, ErrInvalidCompetency
	}
	year, err = strconv.Atoi(string(c[3:7]))
	if err != nil {
		return 0, 0, ErrInvalidCompetency
	}
	if month < 1 || month > 12 || year < 1 {
		return 0, 0, ErrInvalidCompetency
	}
	return month, year, nil
}

// Month returns the competency month (1-12), or 0 if invalid.
func (c Competency) Month() int {
	m, _, err := c.parts()
	if err != nil {
		return 0
	}
	return m
}

// Year returns the competency year, or 0 if invalid.
func (c Competency) Year() int {
	_, y, err := c.parts()
	if err != nil {
		return 0
	}
	return y
}

// AddMonths returns the competency n calendar months later, rolling the
// year over as needed. n may be negative. Invalid competencies are
// returned unchanged.
func (c Competency) AddMonths(n int) Competency {
	month, year, err := c.parts()
	if err != nil {
		return c
	}
	t := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return CompetencyOf(t)
}

// Time returns midnight UTC on the first day of the competency.
func (c Competency) Time() time.Time {
	month, year, err := c.parts()
	if err != nil {
		return time.Time{}
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

func (c Competency) String() string {
	return string(c)
}

// LastCompetencies returns the trailing n competencies ending at the
// month of now, oldest first.
func LastCompetencies(now time.Time, n int) []Competency {
	out := make([]Competency, 0, n)
	for i := n - 1; i >= 0; i-- {
		t := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		out = append(out, CompetencyOf(t))
	}
	return out
}
