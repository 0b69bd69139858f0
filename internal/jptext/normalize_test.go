package jptext

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"fullwidth digits", "１０時３０分", "10時30分"},
		{"fullwidth colon", "１０：３０", "10:30"},
		{"ideographic space collapse", "おはなし会　　１０時", "おはなし会 10時"},
		{"cid artifact", "絵本(cid:123)の会", "絵本の会"},
		{"mixed whitespace", "  リトミック \n 教室 ", "リトミック 教室"},
		{"control characters", "体操\x00\x1f教室", "体操教室"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, expected %q", tt.in, got, tt.expected)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"１０：３０〜１１：００　おはなし会",
		"絵本(cid:9)の　よみきかせ",
		" すでに正規化済み 10:30 ",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
