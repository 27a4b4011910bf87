package pagination

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   Params
		want Params
	}{
		{"zero values", Params{}, Params{Page: 1, Size: DefaultSize}},
		{"negative page", Params{Page: -3, Size: 10}, Params{Page: 1, Size: 10}},
		{"size over max", Params{Page: 2, Size: 500}, Params{Page: 2, Size: MaxSize}},
		{"in range", Params{Page: 4, Size: 25}, Params{Page: 4, Size: 25}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Normalize()
			if got != tc.want {
				t.Fatalf("Normalize() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	if got := (Params{Page: 3, Size: 20}).Offset(); got != 40 {
		t.Fatalf("Offset() = %d, want 40", got)
	}
	if got := (Params{}).Offset(); got != 0 {
		t.Fatalf("Offset() on zero params = %d, want 0", got)
	}
}

func TestNewResult(t *testing.T) {
	result := NewResult([]string{"a", "b"}, Params{Page: 1, Size: 20}, 41)
	if result.TotalPages != 3 {
		t.Fatalf("TotalPages = %d, want 3", result.TotalPages)
	}
	if result.TotalItems != 41 {
		t.Fatalf("TotalItems = %d, want 41", result.TotalItems)
	}

	empty := NewResult[string](nil, Params{}, 0)
	if empty.Items == nil {
		t.Fatal("expected non-nil Items slice for empty result")
	}
	if empty.TotalPages != 0 {
		t.Fatalf("TotalPages = %d, want 0", empty.TotalPages)
	}
}
