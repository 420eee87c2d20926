package askaryan

import "gonum.org/v1/gonum/dsp/fourier"

// fftConvolve returns the full linear convolution of a and b, computed in
// the frequency domain.
func fftConvolve(a, b []float64) []float64 {
	n := len(a) + len(b) - 1
	size := 1
	for size < n {
		size <<= 1
	}
	pa := make([]float64, size)
	copy(pa, a)
	pb := make([]float64, size)
	copy(pb, b)

	fft := fourier.NewFFT(size)
	ca := fft.Coefficients(nil, pa)
	cb := fft.Coefficients(nil, pb)
	for i := range ca {
		ca[i] *= cb[i]
	}
	// Sequence is unnormalized, a roundtrip scales by the length
	out := fft.Sequence(nil, ca)
	res := make([]float64, n)
	for i := range res {
		res[i] = out[i] / float64(size)
	}
	return res
}

// resample changes the number of samples of x to n using the Fourier
// method, which drops all frequencies above the new Nyquist frequency.
func resample(x []float64, n int) []float64 {
	if len(x) == n {
		out := make([]float64, n)
		copy(out, x)
		return out
	}
	fftOld := fourier.NewFFT(len(x))
	coeff := fftOld.Coefficients(nil, x)

	nc := n/2 + 1
	newCoeff := make([]complex128, nc)
	m := len(coeff)
	if m > nc {
		m = nc
	}
	copy(newCoeff, coeff[:m])

	fftNew := fourier.NewFFT(n)
	out := fftNew.Sequence(nil, newCoeff)
	scale := 1 / float64(len(x))
	for i := range out {
		out[i] *= scale
	}
	return out
}

// interpClamped linearly interpolates y(x) on the sorted grid xs, holding
// the endpoint values outside the grid.
func interpClamped(x float64, xs, ys []float64) float64 {
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[len(xs)-1] {
		return ys[len(ys)-1]
	}
	lo, hi := 0, len(xs)-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if xs[mid] <= x {
			lo = mid
		} else {
			hi = mid
		}
	}
	f := (x - xs[lo]) / (xs[hi] - xs[lo])
	return ys[lo] + f*(ys[hi]-ys[lo])
}
