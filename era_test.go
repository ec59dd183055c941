package demoscene

import "testing"

func TestEraString(t *testing.T) {
	tests := []struct {
		era  Era
		want string
	}{
		{EraEighties, "eighties"},
		{EraNineties, "nineties"},
		{EraTwoThousands, "two-thousands"},
		{EraModern, "modern"},
		{Era(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.era.String(); got != tt.want {
			t.Errorf("Era(%d).String() = %q, want %q", tt.era, got, tt.want)
		}
	}
}

func TestErasChronological(t *testing.T) {
	eras := Eras()
	want := []Era{EraEighties, EraNineties, EraTwoThousands, EraModern}
	if len(eras) != len(want) {
		t.Fatalf("Eras() len = %d, want %d", len(eras), len(want))
	}
	for i := range want {
		if eras[i] != want[i] {
			t.Errorf("Eras()[%d] = %v, want %v", i, eras[i], want[i])
		}
	}
}
