package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "zero falls back to default", limit: 0, want: DefaultLimit},
		{name: "negative falls back to default", limit: -5, want: DefaultLimit},
		{name: "in range passes through", limit: 42, want: 42},
		{name: "above max is capped", limit: 5000, want: MaxLimit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeLimit(tc.limit); got != tc.want {
				t.Fatalf("NormalizeLimit(%d) = %d, want %d", tc.limit, got, tc.want)
			}
		})
	}
}

func TestNormalizeOffset(t *testing.T) {
	if got := NormalizeOffset(-1); got != 0 {
		t.Fatalf("negative offset should clamp to zero, got %d", got)
	}
	if got := NormalizeOffset(30); got != 30 {
		t.Fatalf("valid offset should pass through, got %d", got)
	}
}
