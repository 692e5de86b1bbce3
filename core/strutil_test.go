package core

import (
	"math"
	"testing"
)

func TestItoa(t *testing.T) {
	tests := []struct {
		n    int32
		want string
	}{
		{0, "0"},
		{7, "7"},
		{-1, "-1"},
		{300, "300"},
		{-212, "-212"},
		{math.MaxInt32, "2147483647"},
		{math.MinInt32, "-2147483648"},
	}
	for _, tt := range tests {
		if got := itoa(tt.n); got != tt.want {
			t.Errorf("itoa(%d): expected %q, got %q", tt.n, tt.want, got)
		}
	}

	if got := utoa(math.MaxUint32); got != "4294967295" {
		t.Errorf("Expected 4294967295, got %q", got)
	}
}
