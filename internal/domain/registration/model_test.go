package registration

import "testing"

func TestFormatRegistrationID(t *testing.T) {
	cases := []struct {
		date  string
		count int
		want  string
	}{
		{"2024-01-30", 0, "202401300001"},
		{"2024-01-30", 11, "202401300012"},
		{"2024-12-05", 9999, "2024120510000"},
	}
	for _, tc := range cases {
		if got := FormatRegistrationID(tc.date, tc.count); got != tc.want {
			t.Errorf("FormatRegistrationID(%q, %d) = %q, want %q", tc.date, tc.count, got, tc.want)
		}
	}
}

func TestNextTicketNumber(t *testing.T) {
	if got := NextTicketNumber(0); got != 1 {
		t.Errorf("first ticket of the day must be 1, got %d", got)
	}
	if got := NextTicketNumber(41); got != 42 {
		t.Errorf("ticket after 41 existing must be 42, got %d", got)
	}
}
