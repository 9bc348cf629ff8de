package timecode_test

import (
	"testing"

	"clipd/internal/timecode"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "5:30", want: 330},
		{in: "0:05", want: 5},
		{in: "1:02:03", want: 3723},
		{in: "00:00:30.5", want: 30.5},
		{in: "12:59.25", want: 779.25},
		{in: "", wantErr: true},
		{in: "90", wantErr: true},
		{in: "1:2:3:4", wantErr: true},
		{in: "5:61", wantErr: true},
		{in: "-1:30", wantErr: true},
		{in: "abc:30", wantErr: true},
	}
	for _, tc := range cases {
		got, err := timecode.Parse(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("Parse(%q): expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestValidateRange(t *testing.T) {
	start, end, err := timecode.ValidateRange("5:30", "5:45")
	if err != nil {
		t.Fatalf("ValidateRange: %v", err)
	}
	if start != 330 || end != 345 {
		t.Fatalf("unexpected range: %v..%v", start, end)
	}

	if _, _, err := timecode.ValidateRange("5:45", "5:30"); err == nil {
		t.Fatal("expected error when end precedes start")
	}
	if _, _, err := timecode.ValidateRange("5:30", "5:30"); err == nil {
		t.Fatal("expected error for empty interval")
	}
	if _, _, err := timecode.ValidateRange("bad", "5:30"); err == nil {
		t.Fatal("expected error for malformed start")
	}
}
