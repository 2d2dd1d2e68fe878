package sanitize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"Leaking tap in room 101", "Leaking tap in room 101"},
		{"<b>Broken</b> <script>alert(1)</script>window", "Broken window"},
		{"  two   spaces  ", "two spaces"},
		{"line one\nline <i>two</i>", "line one\nline two"},
		{"Tom &amp; Jerry", "Tom & Jerry"},
	}

	for _, tt := range tests {
		if got := Text(tt.in); got != tt.want {
			t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
