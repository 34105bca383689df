package m

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestInsertDeleteRows(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 2, 3, 4})

	ins := insertRows(a, 1, 2)
	assert.True(t, mat.Equal(mat.NewDense(4, 2, []float64{1, 2, 0, 0, 0, 0, 3, 4}), ins))
	assert.True(t, mat.Equal(a, deleteRows(ins, 1, 2)))

	assert.True(t, mat.Equal(mat.NewDense(1, 2, []float64{3, 4}), deleteRows(a, 0, 1)))
	// argument is never modified
	assert.True(t, mat.Equal(mat.NewDense(2, 2, []float64{1, 2, 3, 4}), a))
}

func TestInsertDeleteCols(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 2, 3, 4})

	ins := insertCols(a, 0, 1)
	assert.True(t, mat.Equal(mat.NewDense(2, 3, []float64{0, 1, 2, 0, 3, 4}), ins))
	assert.True(t, mat.Equal(a, deleteCols(ins, 0, 1)))

	assert.True(t, mat.Equal(mat.NewDense(2, 1, []float64{1, 3}), deleteCols(a, 1, 1)))
	assert.True(t, mat.Equal(mat.NewDense(2, 3, []float64{1, 2, 0, 3, 4, 0}), insertCols(a, 2, 1)))
}

func TestInsertDeleteVec(t *testing.T) {
	v := mat.NewVecDense(3, []float64{1, 2, 3})
	ins := insertVec(v, 0, 2)
	assert.Equal(t, []float64{0, 0, 1, 2, 3}, toSlice(ins))
	assert.Equal(t, []float64{1, 2, 3}, toSlice(deleteVec(ins, 0, 2)))
	assert.Equal(t, []float64{1, 3}, toSlice(deleteVec(v, 1, 1)))
}

func TestTile(t *testing.T) {
	// groups of 2 rows: [r0 r1] [r2 r3]
	a := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	assert.Equal(t, []float64{1, 2, 1, 2, 3, 4, 3, 4}, mat.Col(nil, 0, tileRows(a, 2, 2)))
	assert.Equal(t, []float64{1, 1, 1, 2, 2, 2, 3, 3, 3, 4, 4, 4}, mat.Col(nil, 0, tileRows(a, 1, 3)))

	b := mat.NewDense(1, 2, []float64{2, 4})
	assert.Equal(t, []float64{1, 2, 1, 2}, mat.Row(nil, 0, tileCols(b, 2, 2, 0.5)))

	v := mat.NewVecDense(2, []float64{5, 6})
	assert.Equal(t, []float64{5, 5, 6, 6}, toSlice(tileVec(v, 1, 2)))
}

func TestCheckSpanPanics(t *testing.T) {
	a := mat.NewDense(2, 2, nil)
	assert.Panics(t, func() { deleteRows(a, 1, 2) })
	assert.Panics(t, func() { insertCols(a, 3, 1) })
	assert.Panics(t, func() { deleteVec(mat.NewVecDense(1, nil), -1, 1) })
}
