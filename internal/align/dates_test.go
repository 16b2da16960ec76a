package align

import (
	"testing"
	"time"
)

func TestParseDate_Formats(t *testing.T) {
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	inputs := []string{
		"2024-03-05",
		"2024-03-05 00:00:00",
		"2024-03-05 00:00:00+00:00",
		"2024-03-05T00:00:00Z",
		"20240305T000000Z",
		"20240305000000",
		" 2024-03-05 ",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			got, err := ParseDate(in)
			if err != nil {
				t.Fatalf("ParseDate(%q): %v", in, err)
			}
			if !got.Equal(want) {
				t.Errorf("ParseDate(%q) = %v, want %v", in, got, want)
			}
			if got.Location() != time.UTC {
				t.Errorf("ParseDate(%q) location = %v, want UTC", in, got.Location())
			}
		})
	}
}

func TestParseDate_ConvertsOffsetToUTC(t *testing.T) {
	got, err := ParseDate("2024-03-05 04:00:00-05:00")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	want := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) || got.Location() != time.UTC {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "not a date", "2024-13-45"} {
		if _, err := ParseDate(in); err == nil {
			t.Errorf("ParseDate(%q): expected error", in)
		}
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)); got != "2024-03-05" {
		t.Errorf("midnight: got %q", got)
	}
	if got := FormatDate(time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)); got != "2024-03-05 14:30:00" {
		t.Errorf("intraday: got %q", got)
	}
}
