package pagination

import "testing"

func TestNormalizeClampsInputs(t *testing.T) {
	cases := []struct {
		name      string
		in        Params
		wantPage  int
		wantLimit int
	}{
		{"zero values", Params{}, 1, DefaultLimit},
		{"negative page", Params{Page: -3, Limit: 20}, 1, 20},
		{"limit above max", Params{Page: 2, Limit: 500}, 2, MaxLimit},
		{"valid passthrough", Params{Page: 4, Limit: 25}, 4, 25},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Normalize()
			if got.Page != tc.wantPage || got.Limit != tc.wantLimit {
				t.Fatalf("Normalize() = %+v, want page=%d limit=%d", got, tc.wantPage, tc.wantLimit)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	if got := (Params{Page: 3, Limit: 10}).Offset(); got != 20 {
		t.Fatalf("Offset() = %d, want 20", got)
	}
	if got := (Params{}).Offset(); got != 0 {
		t.Fatalf("Offset() for defaults = %d, want 0", got)
	}
}

func TestNewPageRoundsTotalPagesUp(t *testing.T) {
	page := NewPage(Params{Page: 1, Limit: 10}, 21)
	if page.TotalPages != 3 {
		t.Fatalf("TotalPages = %d, want 3", page.TotalPages)
	}
	if page.Total != 21 {
		t.Fatalf("Total = %d, want 21", page.Total)
	}
}
