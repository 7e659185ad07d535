package qr

import "testing"

const sampleToken = "dGhpcy1pcy1hLXRva2VuLXZhbHVl"

func TestExtractTokenFromURL(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
		wantErr bool
	}{
		{"vehicle url", "https://example.eu/vehicle/" + sampleToken, sampleToken, false},
		{"trailing slash", "https://example.eu/vehicle/" + sampleToken + "/", sampleToken, false},
		{"nested path", "https://example.eu/api/v1/vehicle/" + sampleToken, sampleToken, false},
		{"url without token", "https://example.eu/vehicle/", "", true},
		{"url with short segment", "https://example.eu/vehicle/abc", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractToken(tt.payload)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractToken(%q) error = %v, wantErr %v", tt.payload, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExtractToken(%q) = %q, want %q", tt.payload, got, tt.want)
			}
		})
	}
}

func TestExtractRawToken(t *testing.T) {
	got, err := ExtractToken("  " + sampleToken + "  ")
	if err != nil {
		t.Fatalf("ExtractToken: %v", err)
	}
	if got != sampleToken {
		t.Errorf("got %q, want %q", got, sampleToken)
	}
}

func TestExtractTokenRejects(t *testing.T) {
	for _, payload := range []string{"", "short", "with/separator/inside-but-long-enough", `back\slash-token-long-enough-here`} {
		if _, err := ExtractToken(payload); err == nil {
			t.Errorf("ExtractToken(%q) = nil error, want rejection", payload)
		}
	}
}

func TestBuildURL(t *testing.T) {
	got := BuildURL("https://example.eu/vehicle/", sampleToken)
	want := "https://example.eu/vehicle/" + sampleToken
	if got != want {
		t.Errorf("BuildURL = %q, want %q", got, want)
	}
}
