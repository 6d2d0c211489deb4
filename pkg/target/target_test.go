package target

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "schemeless host", raw: "new.example.com", want: "https://new.example.com"},
		{name: "explicit https", raw: "https://new.example.com", want: "https://new.example.com"},
		{name: "explicit http", raw: "http://legacy.example.com", want: "http://legacy.example.com"},
		{name: "upper-case host and scheme", raw: "HTTPS://New.Example.COM", want: "https://new.example.com"},
		{name: "port kept", raw: "new.example.com:8443", want: "https://new.example.com:8443"},
		{name: "base path kept", raw: "https://example.com/app", want: "https://example.com/app"},
		{name: "base query kept", raw: "https://example.com/app?src=legacy", want: "https://example.com/app?src=legacy"},
		{name: "surrounding whitespace", raw: "  new.example.com  ", want: "https://new.example.com"},
		{name: "empty", raw: "", wantErr: true},
		{name: "whitespace only", raw: "   ", wantErr: true},
		{name: "ftp scheme", raw: "ftp://example.com", wantErr: true},
		{name: "javascript scheme", raw: "javascript://alert(1)", wantErr: true},
		{name: "scheme without host", raw: "https://", wantErr: true},
		{name: "not a url", raw: "https://exa mple.com/path", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := Normalize(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Normalize(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got := u.String(); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeHost(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "lowercase passthrough", raw: "old.example.com", want: "old.example.com"},
		{name: "mixed case", raw: "OLD.Example.Com", want: "old.example.com"},
		{name: "port stripped", raw: "old.example.com:8080", want: "old.example.com"},
		{name: "trailing dot stripped", raw: "old.example.com.", want: "old.example.com"},
		{name: "ipv4", raw: "203.0.113.5", want: "203.0.113.5"},
		{name: "ipv6 with port", raw: "[2001:db8::1]:443", want: "2001:db8::1"},
		{name: "idn to punycode", raw: "пример.рф", want: "xn--e1afmkfd.xn--p1ai"},
		{name: "empty", raw: "", wantErr: true},
		{name: "whitespace only", raw: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeHost(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeHost(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("NormalizeHost(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
