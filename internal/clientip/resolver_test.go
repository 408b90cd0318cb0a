package clientip

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResolver(t *testing.T) {
	tests := []struct {
		name    string
		cidrs   []string
		wantErr bool
	}{
		{"Empty list", nil, false},
		{"IPv4 ranges", []string{"127.0.0.1/32", "10.0.0.0/8"}, false},
		{"IPv6 range", []string{"2001:db8::/32"}, false},
		{"Bare address", []string{"192.168.1.10"}, false},
		{"Blank entries skipped", []string{" ", ""}, false},
		{"Invalid CIDR", []string{"invalid-cidr"}, true},
		{"Invalid mask", []string{"10.0.0.0/33"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewResolver(tt.cidrs)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		remote  string
		chain   []string
		want    string
	}{
		{
			name:    "Untrusted peer - header ignored",
			trusted: nil,
			remote:  "203.0.113.5",
			chain:   []string{"198.51.100.9"},
			want:    "203.0.113.5",
		},
		{
			name:    "Trusted loopback proxy",
			trusted: []string{"127.0.0.1/32"},
			remote:  "127.0.0.1",
			chain:   []string{"198.51.100.9"},
			want:    "198.51.100.9",
		},
		{
			name:    "Remote with port",
			trusted: []string{"127.0.0.1/32"},
			remote:  "127.0.0.1:54321",
			chain:   []string{"198.51.100.9"},
			want:    "198.51.100.9",
		},
		{
			name:    "No chain",
			trusted: []string{"127.0.0.1/32"},
			remote:  "127.0.0.1:54321",
			chain:   nil,
			want:    "127.0.0.1",
		},
		{
			name:    "Spoofed leftmost entry is skipped",
			trusted: []string{"10.0.0.0/8"},
			remote:  "10.0.0.1:80",
			chain:   []string{"1.2.3.4", "198.51.100.9", "10.0.0.7"},
			want:    "198.51.100.9",
		},
		{
			name:    "Untrusted peer with long chain",
			trusted: []string{"10.0.0.0/8"},
			remote:  "203.0.113.5:80",
			chain:   []string{"10.0.0.2", "10.0.0.3"},
			want:    "203.0.113.5",
		},
		{
			name:    "All hops trusted - farthest wins",
			trusted: []string{"10.0.0.0/8"},
			remote:  "10.0.0.1:80",
			chain:   []string{"10.1.1.1", "10.2.2.2"},
			want:    "10.1.1.1",
		},
		{
			name:    "Malformed entries skipped",
			trusted: []string{"10.0.0.0/8"},
			remote:  "10.0.0.1:80",
			chain:   []string{"198.51.100.9", "garbage", "10.0.0.5"},
			want:    "198.51.100.9",
		},
		{
			name:    "Only malformed entries",
			trusted: []string{"10.0.0.0/8"},
			remote:  "10.0.0.1:80",
			chain:   []string{"unknown", ""},
			want:    "10.0.0.1",
		},
		{
			name:    "Entry with port",
			trusted: []string{"127.0.0.1/32"},
			remote:  "127.0.0.1:80",
			chain:   []string{"198.51.100.9:4431"},
			want:    "198.51.100.9",
		},
		{
			name:    "IPv6 proxy and client",
			trusted: []string{"2001:db8::/32"},
			remote:  "[2001:db8::1]:443",
			chain:   []string{"2001:db9::42"},
			want:    "2001:db9::42",
		},
		{
			name:    "Bracketed IPv6 entry",
			trusted: []string{"127.0.0.1/32"},
			remote:  "127.0.0.1:80",
			chain:   []string{"[2001:db9::42]"},
			want:    "2001:db9::42",
		},
		{
			name:    "IPv4-mapped peer",
			trusted: []string{"127.0.0.1/32"},
			remote:  "[::ffff:127.0.0.1]:80",
			chain:   []string{"198.51.100.9"},
			want:    "198.51.100.9",
		},
		{
			name:    "Unparseable remote",
			trusted: []string{"127.0.0.1/32"},
			remote:  "pipe",
			chain:   []string{"198.51.100.9"},
			want:    "pipe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewResolver(tt.trusted)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Resolve(tt.remote, tt.chain))
		})
	}
}

func TestResolver_FromRequest(t *testing.T) {
	r, err := NewResolver([]string{"127.0.0.1/32", "10.0.0.0/8"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/abc123", nil)
	req.RemoteAddr = "127.0.0.1:40000"
	req.Header.Add(HeaderForwardedFor, "1.1.1.1, 198.51.100.9")
	req.Header.Add(HeaderForwardedFor, "10.0.0.3")

	assert.Equal(t, []string{"1.1.1.1", "198.51.100.9", "10.0.0.3"}, ForwardedChain(req.Header))
	assert.Equal(t, "198.51.100.9", r.FromRequest(req))
}

func TestResolver_Trusted(t *testing.T) {
	r, err := NewResolver([]string{"192.168.1.0/24", "192.168.2.10"})
	require.NoError(t, err)

	assert.True(t, r.Trusted(netip.MustParseAddr("192.168.1.254")))
	assert.True(t, r.Trusted(netip.MustParseAddr("192.168.2.10")))
	assert.True(t, r.Trusted(netip.MustParseAddr("::ffff:192.168.1.1")))
	assert.False(t, r.Trusted(netip.MustParseAddr("192.168.2.11")))
	assert.False(t, r.Trusted(netip.MustParseAddr("10.0.0.1")))
}
