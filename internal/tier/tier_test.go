package tier

import (
	"testing"

	"github.com/felixgeelhaar/wavemaker/internal/domain"
)

func TestFromComplexity(t *testing.T) {
	tests := []struct {
		complexity domain.Complexity
		want       Tier
	}{
		{1, Baseline},
		{2, Baseline},
		{3, Elevated},
		{4, Maximal},
		{5, Maximal},
	}

	for _, tt := range tests {
		if got := FromComplexity(tt.complexity); got != tt.want {
			t.Errorf("FromComplexity(%d) = %s, want %s", tt.complexity, got, tt.want)
		}
	}
}

func TestEscalate(t *testing.T) {
	if Baseline.Escalate() != Elevated {
		t.Error("baseline should escalate to elevated")
	}
	if Elevated.Escalate() != Maximal {
		t.Error("elevated should escalate to maximal")
	}
	if Maximal.Escalate() != Maximal {
		t.Error("maximal has nothing above it")
	}
}

func TestSelectOverride(t *testing.T) {
	if got := Select(1, "maximal"); got != Maximal {
		t.Errorf("override should win, got %s", got)
	}
	if got := Select(5, "baseline"); got != Baseline {
		t.Errorf("override should win even downward, got %s", got)
	}
	if got := Select(3, ""); got != Elevated {
		t.Errorf("no override falls back to complexity, got %s", got)
	}
}

func TestParse(t *testing.T) {
	for _, name := range []string{"baseline", "elevated", "maximal"} {
		tr, err := Parse(name)
		if err != nil {
			t.Fatalf("Parse(%q) unexpected error: %v", name, err)
		}
		if tr.String() != name {
			t.Errorf("round trip %q -> %q", name, tr.String())
		}
	}

	if _, err := Parse("turbo"); err == nil {
		t.Error("Parse should reject unknown tiers")
	}
}
