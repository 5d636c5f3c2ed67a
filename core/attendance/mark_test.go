package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in      string
		want    Weekday
		wantErr bool
	}{
		{in: "sun", want: Sunday},
		{in: "Monday", want: Monday},
		{in: "TUES", want: Tuesday},
		{in: "wed", want: Wednesday},
		{in: "thu", want: Thursday},
		{in: "fri", wantErr: true},
		{in: "sat", wantErr: true},
		{in: "su", wantErr: true},
		{in: "sunburn", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWeekday(tt.in)
			if tt.wantErr {
				assert.Equal(t, ErrInvalidWeekday, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMark(t *testing.T) {
	m, err := ParseMark("Very_Late")
	assert.NoError(t, err)
	assert.Equal(t, VeryLate, m)

	m, err = ParseMark("")
	assert.NoError(t, err)
	assert.Equal(t, Unset, m)

	_, err = ParseMark("excused")
	assert.Equal(t, ErrInvalidMark, err)
}
