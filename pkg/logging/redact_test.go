package logging

import "testing"

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"jane.doe@widgetco.io", "j******e@widgetco.io"},
		{"ab@x.io", "a*@x.io"},
		{"a@x.io", "a@x.io"},
		{"  jane@x.io ", "j**e@x.io"},
		{"weird", "w***d"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := MaskEmail(tt.in); got != tt.want {
			t.Errorf("MaskEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMaskPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"9876543210", "******3210"},
		{"+91 9876543210", "+** ******3210"},
		{"080-22334455", "***-****4455"},
		{"1234", "***4"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := MaskPhone(tt.in); got != tt.want {
			t.Errorf("MaskPhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMaskAll(t *testing.T) {
	got := MaskAll([]string{"9876543210", "8765432109"}, MaskPhone)
	if len(got) != 2 || got[0] != "******3210" || got[1] != "******2109" {
		t.Errorf("MaskAll = %v", got)
	}
}
