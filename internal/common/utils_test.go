package common

import "testing"

func TestContainsAnyFold(t *testing.T) {
	cases := []struct {
		s    string
		subs []string
		want bool
	}{
		{"Hey Google, what time is it", []string{"hey google", "ok google"}, true},
		{"OK GOOGLE", []string{"hey google", "ok google"}, true},
		{"okay googol", []string{"hey google", "ok google"}, false},
		{"anything", nil, false},
		{"anything", []string{""}, false},
	}
	for _, c := range cases {
		if got := ContainsAnyFold(c.s, c.subs...); got != c.want {
			t.Fatalf("ContainsAnyFold(%q, %v) = %v, want %v", c.s, c.subs, got, c.want)
		}
	}
}
