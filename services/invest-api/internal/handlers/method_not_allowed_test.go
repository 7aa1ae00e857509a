package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathMatches(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/api/v1/orders", "/api/v1/orders", true},
		{"/api/v1/orders/:id", "/api/v1/orders/abc", true},
		{"/api/v1/orders/:id", "/api/v1/orders", false},
		{"/api/v1/orders/:id/status", "/api/v1/orders/abc/status", true},
		{"/api/v1/orders/:id/status", "/api/v1/orders/abc", false},
		{"/api/v1/funds/:code/nav", "/api/v1/funds/120503/nav", true},
		{"/swagger/*any", "/swagger/index.html", true},
		{"/api/v1/orders", "/api/v1/funds", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, pathMatches(tc.pattern, tc.path),
			"pattern %s vs path %s", tc.pattern, tc.path)
	}
}
