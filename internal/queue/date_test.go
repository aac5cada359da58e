package queue

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    Date
		wantErr bool
	}{
		{name: "iso", in: "2024-03-09", want: NewDate(2024, time.March, 9)},
		{name: "surrounding space", in: "  2024-03-09 ", want: NewDate(2024, time.March, 9)},
		{name: "leap day", in: "2024-02-29", want: NewDate(2024, time.February, 29)},
		{name: "not a leap year", in: "2023-02-29", wantErr: true},
		{name: "unpadded", in: "2024-3-9", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "words", in: "tomorrow", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseDate(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDate(%q)=%v, want error", tt.in, got)
				}

				return
			}

			if err != nil {
				t.Fatalf("ParseDate(%q): %v", tt.in, err)
			}

			if !got.Equal(tt.want) {
				t.Fatalf("ParseDate(%q)=%v, want=%v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDate_Arithmetic(t *testing.T) {
	t.Parallel()

	d := MustParseDate("2024-01-31")

	if got, want := d.AddDays(1).String(), "2024-02-01"; got != want {
		t.Fatalf("AddDays(1)=%s, want=%s", got, want)
	}

	if got, want := d.AddDays(-31).String(), "2023-12-31"; got != want {
		t.Fatalf("AddDays(-31)=%s, want=%s", got, want)
	}

	if got, want := d.DaysUntil(MustParseDate("2024-03-01")), 30; got != want {
		t.Fatalf("DaysUntil=%d, want=%d", got, want)
	}

	if !d.Before(d.AddDays(1)) || !d.AddDays(1).After(d) {
		t.Fatal("Before/After disagree with AddDays")
	}
}

func TestDateOf_IgnoresTimeOfDay(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+13", 13*60*60)
	late := time.Date(2024, time.June, 1, 23, 59, 0, 0, loc)

	if got, want := DateOf(late).String(), "2024-06-01"; got != want {
		t.Fatalf("DateOf=%s, want=%s", got, want)
	}
}

func TestDate_ZeroValue(t *testing.T) {
	t.Parallel()

	var d Date

	if !d.IsZero() {
		t.Fatal("zero Date: IsZero()=false")
	}

	if got := d.String(); got != "" {
		t.Fatalf("zero Date String()=%q, want empty", got)
	}
}
