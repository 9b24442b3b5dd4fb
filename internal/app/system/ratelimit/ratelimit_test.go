package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllow_LimitPerKey(t *testing.T) {
	l := New(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("hit %d should be allowed", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Error("fourth hit should be rejected")
	}

	// Other keys are counted independently.
	if !l.Allow("10.0.0.2") {
		t.Error("a fresh key should be allowed")
	}
}

func TestAllow_WindowExpiry(t *testing.T) {
	l := New(1, 20*time.Millisecond)

	if !l.Allow("k") {
		t.Fatal("first hit should be allowed")
	}
	if l.Allow("k") {
		t.Fatal("second hit inside the window should be rejected")
	}

	time.Sleep(30 * time.Millisecond)
	if !l.Allow("k") {
		t.Error("hit after the window expired should be allowed")
	}
}

func TestReset(t *testing.T) {
	l := New(1, time.Minute)

	l.Allow("k")
	if l.Allow("k") {
		t.Fatal("limit should be hit")
	}
	l.Reset("k")
	if !l.Allow("k") {
		t.Error("Reset should reopen the window")
	}
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name       string
		remoteAddr string
		xff        string
		realIP     string
		want       string
	}{
		{name: "remote addr with port", remoteAddr: "203.0.113.7:4431", want: "203.0.113.7"},
		{name: "remote addr without port", remoteAddr: "203.0.113.7", want: "203.0.113.7"},
		{name: "forwarded-for wins", remoteAddr: "10.0.0.1:80", xff: "198.51.100.2, 10.0.0.1", want: "198.51.100.2"},
		{name: "real-ip fallback", remoteAddr: "10.0.0.1:80", realIP: " 198.51.100.9 ", want: "198.51.100.9"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tc.remoteAddr
			if tc.xff != "" {
				r.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.realIP != "" {
				r.Header.Set("X-Real-IP", tc.realIP)
			}
			if got := ClientIP(r); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}
