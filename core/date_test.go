package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Date
		wantErr bool
	}{
		{name: "iso date", in: "2021-03-08", want: NewDate(2021, time.March, 8)},
		{name: "padded", in: " 2021-03-08 ", want: NewDate(2021, time.March, 8)},
		{name: "timestamp keeps its day", in: "2021-03-08T23:30:00+02:00", want: NewDate(2021, time.March, 8)},
		{name: "empty", in: "", wantErr: true},
		{name: "garbage", in: "08/03/2021", wantErr: true},
		{name: "invalid day", in: "2021-02-30", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, errInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
		})
	}
}

func TestDate_arithmetic(t *testing.T) {
	d := NewDate(2021, time.February, 26)

	assert.Equal(t, "2021-03-01", d.AddDays(3).String())
	assert.Equal(t, 3, d.DaysUntil(d.AddDays(3)))
	assert.Equal(t, -7, d.DaysUntil(d.AddDays(-7)))
	assert.Equal(t, time.Friday, d.Weekday())

	assert.True(t, d.Between(d, d))
	assert.True(t, d.Between(d.AddDays(-1), d.AddDays(1)))
	assert.False(t, d.Between(d.AddDays(1), d.AddDays(2)))

	// across a DST change in a local zone, days stay whole
	loc, err := time.LoadLocation("Europe/Paris")
	if err == nil {
		assert.Equal(t, NewDate(2021, time.March, 28), DateOf(time.Date(2021, time.March, 28, 23, 0, 0, 0, loc)))
		assert.Equal(t, 2, NewDate(2021, time.March, 27).DaysUntil(NewDate(2021, time.March, 29)))
	}
}

func TestDate_JSON(t *testing.T) {
	type payload struct {
		Date Date `json:"date"`
	}

	data, err := json.Marshal(payload{Date: NewDate(2021, time.March, 8)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date": "2021-03-08"}`, string(data))

	data, err = json.Marshal(payload{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date": null}`, string(data))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"date": "2021-03-08"}`), &p))
	assert.Equal(t, "2021-03-08", p.Date.String())
	require.NoError(t, json.Unmarshal([]byte(`{"date": null}`), &p))
	assert.True(t, p.Date.IsZero())
	assert.Error(t, json.Unmarshal([]byte(`{"date": "lol"}`), &p))
}

func TestDate_SQL(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2021, time.March, 8, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2021-03-08", d.String())

	require.NoError(t, d.Scan([]byte("2021-03-09")))
	assert.Equal(t, "2021-03-09", d.String())

	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2021-03-09", v)

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())
	v, err = d.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	assert.Error(t, d.Scan(42))
}
