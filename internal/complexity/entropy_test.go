package complexity

import "testing"

func TestEntropyHighDiversity(t *testing.T) {
	e := Entropy(TokenCounts{DistinctShapes: 10, TotalShapes: 10})
	if e != 1.0 {
		t.Errorf("Entropy = %v, want 1.0", e)
	}
}

func TestEntropyRepetitive(t *testing.T) {
	e := Entropy(TokenCounts{DistinctShapes: 1, TotalShapes: 10})
	if e != 0.1 {
		t.Errorf("Entropy = %v, want 0.1", e)
	}
}

func TestAdjustDampensRepetitiveCode(t *testing.T) {
	effHigh, _ := Adjust(10, 2, 1.0, 0.0)
	effLow, _ := Adjust(10, 2, 0.1, 1.0)
	if effLow >= effHigh {
		t.Errorf("expected repetitive code to dampen more: effLow=%v effHigh=%v", effLow, effHigh)
	}
}

func TestEstBranches(t *testing.T) {
	_, branches := Adjust(9, 3, 1.0, 0.0)
	want := 3.0 * 9.0 / 3.0
	if branches != want {
		t.Errorf("estBranches = %v, want %v", branches, want)
	}
}
