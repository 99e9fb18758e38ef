// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"testing"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"empty", "", "", false},
		{"plain text", "having a great day", "having a great day", false},
		{"emoji", "🌈 vibes", "🌈 vibes", false},
		{"angle brackets escaped", "1 < 2 > 0", "1 &lt; 2 &gt; 0", false},
		{"script tag", "<script>alert(1)</script>", "", true},
		{"script word case-insensitive", "SCRIPT kiddie", "", true},
		{"javascript url", "javascript:alert(1)", "", true},
		{"event handler", "x onerror=alert(1)", "", true},
		{"iframe", "<iframe src=x>", "", true},
		{"img tag", "<img src=x>", "", true},
		{"svg tag", "<svg/onload=x>", "", true},
		{"document access", "document.cookie", "", true},
		{"window access", "window.location", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sanitizeText(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsafeContent) {
					t.Fatalf("sanitizeText(%q) err = %v, want ErrUnsafeContent", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("sanitizeText(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("sanitizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
