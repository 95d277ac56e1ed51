package schedule

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestAddWeekdays(t *testing.T) {
	cases := []struct {
		name  string
		start string
		days  float64
		want  string
	}{
		{"friday plus two skips the weekend", "2024-01-05", 2, "2024-01-09"},
		{"monday plus four", "2024-01-01", 4, "2024-01-05"},
		// Mon+5 lands on the following Monday, not Friday: the start day is
		// never counted, which is also what makes Fri+2 land on Tuesday.
		{"monday plus five ends next monday since the start day is not counted", "2024-01-01", 5, "2024-01-08"},
		{"fraction rounds up", "2024-01-01", 2.4, "2024-01-04"},
		{"zero stays put", "2024-01-03", 0, "2024-01-03"},
		{"saturday start", "2024-01-06", 1, "2024-01-08"},
		{"infinite is clamped", "2024-01-01", math.Inf(1), "2033-12-19"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AddWeekdays(mustDate(t, tc.start), tc.days)
			assert.Equal(t, tc.want, got.String())
			assert.False(t, got.IsWeekend() && tc.days > 0, "end date %s is a weekend", got)
		})
	}
}

func TestNextWeekday(t *testing.T) {
	assert.Equal(t, "2024-01-08", NextWeekday(mustDate(t, "2024-01-06")).String())
	assert.Equal(t, "2024-01-08", NextWeekday(mustDate(t, "2024-01-07")).String())
	assert.Equal(t, "2024-01-03", NextWeekday(mustDate(t, "2024-01-03")).String())
}

func TestDateOf_DropsClockAndZone(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	d := DateOf(time.Date(2024, 3, 1, 23, 30, 0, 0, loc))
	assert.Equal(t, NewDate(2024, time.March, 1), d)
	assert.Equal(t, time.Friday, d.Weekday())
}

func TestDaysSince(t *testing.T) {
	a := mustDate(t, "2024-02-27")
	b := mustDate(t, "2024-03-02")
	assert.Equal(t, 4, b.DaysSince(a))
	assert.Equal(t, -4, a.DaysSince(b))
}

func TestParseDate_Invalid(t *testing.T) {
	_, err := ParseDate("2024-13-01")
	assert.Error(t, err)
	_, err = ParseDate("next tuesday")
	assert.Error(t, err)
}

func TestDate_JSON(t *testing.T) {
	span := Span{TaskID: "a", Start: NewDate(2024, time.January, 5), End: NewDate(2024, time.January, 9)}
	b, err := json.Marshal(span)
	require.NoError(t, err)
	assert.JSONEq(t, `{"task_id":"a","start_date":"2024-01-05","end_date":"2024-01-09"}`, string(b))

	var back Span
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, span, back)

	assert.Error(t, json.Unmarshal([]byte(`{"start_date":"05/01/2024"}`), &back))
}

func TestDate_Zero(t *testing.T) {
	var d Date
	assert.True(t, d.IsZero())
	assert.Equal(t, "", d.String())
	require.NoError(t, d.UnmarshalText(nil))
	assert.True(t, d.IsZero())
}
