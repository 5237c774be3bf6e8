package forecast

import "errors"

// errSingularMatrix means the feature matrix carried no usable signal,
// e.g. every row was identical.
var errSingularMatrix = errors.New("singular feature matrix")

// ridge dampens the normal equations so near-collinear features (weekend is
// a function of day-of-week) stay solvable.
const ridge = 1e-6

// solveLeastSquares fits y = b0 + b1*x1 + ... by the normal equations
// (XᵀX + λI)β = Xᵀy, returning the coefficient vector with the intercept
// first.
func solveLeastSquares(x [][]float64, y []float64) ([]float64, error) {
	n := len(x)
	if n == 0 {
		return nil, errSingularMatrix
	}
	dim := len(x[0]) + 1 // intercept column

	// Build XᵀX and Xᵀy over the augmented design matrix.
	xtx := make([][]float64, dim)
	for i := range xtx {
		xtx[i] = make([]float64, dim)
	}
	xty := make([]float64, dim)

	for r := 0; r < n; r++ {
		row := make([]float64, dim)
		row[0] = 1.0
		copy(row[1:], x[r])
		for i := 0; i < dim; i++ {
			for j := 0; j < dim; j++ {
				xtx[i][j] += row[i] * row[j]
			}
			xty[i] += row[i] * y[r]
		}
	}

	for i := 0; i < dim; i++ {
		xtx[i][i] += ridge
	}

	return gaussianSolve(xtx, xty)
}

// gaussianSolve runs Gaussian elimination with partial pivoting on a
// symmetric positive-definite system.
func gaussianSolve(a [][]float64, b []float64) ([]float64, error) {
	dim := len(b)

	for col := 0; col < dim; col++ {
		pivot := col
		for r := col + 1; r < dim; r++ {
			if abs(a[r][col]) > abs(a[pivot][col]) {
				pivot = r
			}
		}
		if abs(a[pivot][col]) < 1e-12 {
			return nil, errSingularMatrix
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for r := col + 1; r < dim; r++ {
			factor := a[r][col] / a[col][col]
			for c := col; c < dim; c++ {
				a[r][c] -= factor * a[col][c]
			}
			b[r] -= factor * b[col]
		}
	}

	coeffs := make([]float64, dim)
	for i := dim - 1; i >= 0; i-- {
		sum := b[i]
		for j := i + 1; j < dim; j++ {
			sum -= a[i][j] * coeffs[j]
		}
		coeffs[i] = sum / a[i][i]
	}

	return coeffs, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
