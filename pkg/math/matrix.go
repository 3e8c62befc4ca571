package math

// Matrix4 is a column-major-conceptual 4x4 matrix stored row-major in
// Value[row][col]; MulVec4 applies it to a homogeneous Vec4 by combining
// columns 0 through 3, each read from its own index.
type Matrix4 struct {
	Value [4][4]float64
}

// Identity4 returns the 4x4 identity matrix.
func Identity4() Matrix4 {
	var m Matrix4
	for i := 0; i < 4; i++ {
		m.Value[i][i] = 1
	}
	return m
}

// NewMatrix4FromColumns builds a matrix from four homogeneous column
// vectors, mirroring the constructor shape used by the original
// matrix4(v1,v2,v3,v4) column constructor.
func NewMatrix4FromColumns(c0, c1, c2, c3 Vec4) Matrix4 {
	var m Matrix4
	m.Value[0][0], m.Value[1][0], m.Value[2][0], m.Value[3][0] = c0.X, c0.Y, c0.Z, c0.W
	m.Value[0][1], m.Value[1][1], m.Value[2][1], m.Value[3][1] = c1.X, c1.Y, c1.Z, c1.W
	m.Value[0][2], m.Value[1][2], m.Value[2][2], m.Value[3][2] = c2.X, c2.Y, c2.Z, c2.W
	m.Value[0][3], m.Value[1][3], m.Value[2][3], m.Value[3][3] = c3.X, c3.Y, c3.Z, c3.W
	return m
}

// MulVec4 applies the matrix to a homogeneous vector.
func (m Matrix4) MulVec4(v Vec4) Vec4 {
	c0 := Vec4{m.Value[0][0], m.Value[1][0], m.Value[2][0], m.Value[3][0]}
	c1 := Vec4{m.Value[0][1], m.Value[1][1], m.Value[2][1], m.Value[3][1]}
	c2 := Vec4{m.Value[0][2], m.Value[1][2], m.Value[2][2], m.Value[3][2]}
	c3 := Vec4{m.Value[0][3], m.Value[1][3], m.Value[2][3], m.Value[3][3]}

	return Vec4{
		X: c0.X*v.X + c1.X*v.Y + c2.X*v.Z + c3.X*v.W,
		Y: c0.Y*v.X + c1.Y*v.Y + c2.Y*v.Z + c3.Y*v.W,
		Z: c0.Z*v.X + c1.Z*v.Y + c2.Z*v.Z + c3.Z*v.W,
		W: c0.W*v.X + c1.W*v.Y + c2.W*v.Z + c3.W*v.W,
	}
}

// Mul composes two matrices: (m*o) applied to v equals m applied to (o
// applied to v).
func (m Matrix4) Mul(o Matrix4) Matrix4 {
	var r Matrix4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			sum := 0.0
			for k := 0; k < 4; k++ {
				sum += m.Value[i][k] * o.Value[k][j]
			}
			r.Value[i][j] = sum
		}
	}
	return r
}

// Transpose returns the transposed matrix.
func (m Matrix4) Transpose() Matrix4 {
	var r Matrix4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			r.Value[j][i] = m.Value[i][j]
		}
	}
	return r
}

// Inverse computes the matrix inverse via Gauss-Jordan elimination with
// partial pivoting. Singular input (degenerate scale transforms) returns
// the identity rather than panicking.
func (m Matrix4) Inverse() Matrix4 {
	var a [4][8]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			a[i][j] = m.Value[i][j]
		}
		a[i][4+i] = 1
	}

	for col := 0; col < 4; col++ {
		pivot := col
		maxAbs := abs(a[col][col])
		for r := col + 1; r < 4; r++ {
			if v := abs(a[r][col]); v > maxAbs {
				maxAbs = v
				pivot = r
			}
		}
		if maxAbs < 1e-12 {
			return Identity4()
		}
		a[col], a[pivot] = a[pivot], a[col]

		pivotVal := a[col][col]
		for j := 0; j < 8; j++ {
			a[col][j] /= pivotVal
		}
		for r := 0; r < 4; r++ {
			if r == col {
				continue
			}
			factor := a[r][col]
			for j := 0; j < 8; j++ {
				a[r][j] -= factor * a[col][j]
			}
		}
	}

	var out Matrix4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out.Value[i][j] = a[i][4+j]
		}
	}
	return out
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
