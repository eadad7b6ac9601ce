package model

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthWindow(t *testing.T) {
	tests := []struct {
		name      string
		month     Month
		wantStart time.Time
		wantEnd   time.Time
		wantDays  int
	}{
		{
			name:      "leap february",
			month:     Month{Year: 2024, Month: time.February},
			wantStart: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
			wantDays:  29,
		},
		{
			name:      "december rolls the year",
			month:     Month{Year: 2023, Month: time.December},
			wantStart: time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			wantDays:  31,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tt.month.Window(nil)
			assert.True(t, tt.wantStart.Equal(w.Start))
			assert.True(t, tt.wantEnd.Equal(w.End))
			assert.Equal(t, tt.wantDays, w.Days())
		})
	}
}

func TestMonthWindow_Location(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	w := Month{Year: 2024, Month: time.March}.Window(loc)
	assert.Equal(t, "2024-03-01T00:00:00-05:00", w.Start.Format(time.RFC3339))
	assert.Equal(t, "2024-04-01T00:00:00-04:00", w.End.Format(time.RFC3339))
	assert.Equal(t, 31, w.Days(), "DST shift rounds to whole days")
}

func TestWindowContains(t *testing.T) {
	w := Month{Year: 2024, Month: time.March}.Window(time.UTC)

	tests := []struct {
		at   time.Time
		name string
		want bool
	}{
		{name: "start is inclusive", at: w.Start, want: true},
		{name: "end is exclusive", at: w.End, want: false},
		{name: "last instant", at: w.End.Add(-time.Millisecond), want: true},
		{name: "before start", at: w.Start.Add(-time.Millisecond), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.Contains(tt.at))
		})
	}
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		input   string
		want    Month
		wantErr bool
	}{
		{input: "2024-03", want: Month{Year: 2024, Month: time.March}},
		{input: "1999-12", want: Month{Year: 1999, Month: time.December}},
		{input: "2024-13", wantErr: true},
		{input: "2024-3", wantErr: true},
		{input: "March 2024", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMonth(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMonth)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestMonthLabel(t *testing.T) {
	m := MonthOf(time.Date(2024, time.January, 31, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, "January 2024", m.Label())
	assert.False(t, m.IsZero())
	assert.True(t, Month{}.IsZero())
}
