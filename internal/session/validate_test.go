package session

import "testing"

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "main", false},
		{"valid with numbers", "ngo123", false},
		{"valid with hyphen", "my-org", false},
		{"valid with underscore", "my_org", false},
		{"valid single char", "a", false},
		{"valid max length", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false},
		{"empty", "", true},
		{"uppercase", "Main", true},
		{"space", "my org", true},
		{"dot", "my.org", true},
		{"too long", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", true},
		{"slash", "my/org", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestNameFromShortcode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example", "example"},
		{"  Example ", "example"},
		{"my org.v2", "my-org-v2"},
		{"--weird--", "weird"},
		{"@@", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NameFromShortcode(tt.in)
			if got != tt.want {
				t.Errorf("NameFromShortcode(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if got != "" {
				if err := ValidateName(got); err != nil {
					t.Errorf("derived name invalid: %v", err)
				}
			}
		})
	}
}
