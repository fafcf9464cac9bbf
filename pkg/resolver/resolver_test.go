package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		cidr      string
		addresses []string
		want      string
		ok        bool
	}{
		{"first in range", "192.168.1.0/24", []string{"10.0.0.1", "192.168.1.20", "192.168.1.21"}, "192.168.1.20", true},
		{"none in range", "192.168.1.0/24", []string{"10.0.0.1"}, "", false},
		{"skips invalid", "10.0.0.0/8", []string{"", "not-an-ip", "10.1.2.3"}, "10.1.2.3", true},
		{"no addresses", "10.0.0.0/8", nil, "", false},
		{"empty cidr takes first valid", "", []string{"bogus", "172.16.0.4", "10.0.0.1"}, "172.16.0.4", true},
		{"unmasked cidr", "192.168.1.77/24", []string{"192.168.1.5"}, "192.168.1.5", true},
		{"ipv4-mapped", "192.168.1.0/24", []string{"::ffff:192.168.1.9"}, "192.168.1.9", true},
		{"ipv6", "fd00::/64", []string{"192.168.1.1", "fd00::12"}, "fd00::12", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.cidr)
			require.NoError(t, err)
			got, ok := r.Resolve(tt.addresses...)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_Invalid(t *testing.T) {
	_, err := New("192.168.1.0/33")
	assert.ErrorContains(t, err, "invalid cidr")
}

func TestString(t *testing.T) {
	r, err := New("10.1.2.3/8")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.0/8", r.String())

	r, err = New("")
	require.NoError(t, err)
	assert.Equal(t, "*", r.String())
}
