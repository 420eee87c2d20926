package medium

import (
	"math"
	"testing"
)

func TestUniform(t *testing.T) {
	u := Uniform{N: 1.78}
	if got := u.IndexOfRefraction(-100); got != 1.78 {
		t.Errorf("n(-100) = %g, want 1.78", got)
	}
	if got := u.IndexOfRefraction(5); got != 1 {
		t.Errorf("n(5) = %g, want 1 in air", got)
	}
	if got := u.MeanIndex(-100, -2000); got != 1.78 {
		t.Errorf("mean index = %g, want 1.78", got)
	}
}

func TestExponentialProfile(t *testing.T) {
	e := SouthPole()

	// surface value is the firn index, deep ice approaches nIce
	if got := e.IndexOfRefraction(0); math.Abs(got-(1.78-0.425)) > 1e-12 {
		t.Errorf("n(0) = %g, want %g", got, 1.78-0.425)
	}
	deep := e.IndexOfRefraction(-2000)
	if math.Abs(deep-1.78) > 1e-6 {
		t.Errorf("n(-2000) = %g, want about 1.78", deep)
	}
	if got := e.IndexOfRefraction(10); got != 1 {
		t.Errorf("n(10) = %g, want 1 in air", got)
	}

	// monotonically increasing with depth
	prev := e.IndexOfRefraction(0)
	for z := -10.0; z >= -500; z -= 10 {
		n := e.IndexOfRefraction(z)
		if n < prev {
			t.Fatalf("n(%g) = %g decreased from %g", z, n, prev)
		}
		prev = n
	}
}

func TestExponentialMeanIndex(t *testing.T) {
	e := SouthPole()

	// mean over a vanishing interval equals the local index
	if got, want := e.MeanIndex(-300, -300), e.IndexOfRefraction(-300); math.Abs(got-want) > 1e-12 {
		t.Errorf("point mean = %g, want %g", got, want)
	}

	// analytic mean matches a numeric integral
	z1, z2 := -800.0, -20.0
	const n = 100000
	var sum float64
	for i := 0; i < n; i++ {
		z := z1 + (z2-z1)*(float64(i)+0.5)/n
		sum += e.IndexOfRefraction(z)
	}
	want := sum / n
	if got := e.MeanIndex(z1, z2); math.Abs(got-want) > 1e-6 {
		t.Errorf("mean index = %g, numeric %g", got, want)
	}

	// argument order must not matter
	if e.MeanIndex(z1, z2) != e.MeanIndex(z2, z1) {
		t.Error("mean index depends on argument order")
	}

	// a deep interval is effectively uniform
	if got := e.MeanIndex(-2700, -2000); math.Abs(got-1.78) > 1e-6 {
		t.Errorf("deep mean = %g, want about 1.78", got)
	}
}
