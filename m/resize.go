package m

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// The primitives below never modify their argument; they return a freshly
// allocated matrix so a failed mutation cannot leave a half-resized layer behind.

func insertRows(a *mat.Dense, at, n int) *mat.Dense {
	r, c := a.Dims()
	checkSpan("insertRows", at, 0, r)
	o := mat.NewDense(r+n, c, nil)
	for i := 0; i < r; i++ {
		dst := i
		if i >= at {
			dst += n
		}
		o.SetRow(dst, a.RawRowView(i))
	}
	return o
}

func insertCols(a *mat.Dense, at, n int) *mat.Dense {
	r, c := a.Dims()
	checkSpan("insertCols", at, 0, c)
	o := mat.NewDense(r, c+n, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			dst := j
			if j >= at {
				dst += n
			}
			o.Set(i, dst, a.At(i, j))
		}
	}
	return o
}

func deleteRows(a *mat.Dense, at, n int) *mat.Dense {
	r, c := a.Dims()
	checkSpan("deleteRows", at, n, r)
	o := mat.NewDense(r-n, c, nil)
	for i, dst := 0, 0; i < r; i++ {
		if i >= at && i < at+n {
			continue
		}
		o.SetRow(dst, a.RawRowView(i))
		dst++
	}
	return o
}

func deleteCols(a *mat.Dense, at, n int) *mat.Dense {
	r, c := a.Dims()
	checkSpan("deleteCols", at, n, c)
	o := mat.NewDense(r, c-n, nil)
	for j, dst := 0, 0; j < c; j++ {
		if j >= at && j < at+n {
			continue
		}
		for i := 0; i < r; i++ {
			o.Set(i, dst, a.At(i, j))
		}
		dst++
	}
	return o
}

// tileRows replicates every contiguous group of rows factor times in place:
// copy c of group g starts at row (g*factor + c)*group.
func tileRows(a *mat.Dense, group, factor int) *mat.Dense {
	r, c := a.Dims()
	o := mat.NewDense(r*factor, c, nil)
	for i := 0; i < r; i++ {
		g, k := i/group, i%group
		for cp := 0; cp < factor; cp++ {
			o.SetRow((g*factor+cp)*group+k, a.RawRowView(i))
		}
	}
	return o
}

// tileCols is tileRows over columns; every copy is multiplied by scale.
func tileCols(a *mat.Dense, group, factor int, scale float64) *mat.Dense {
	r, c := a.Dims()
	o := mat.NewDense(r, c*factor, nil)
	for j := 0; j < c; j++ {
		g, k := j/group, j%group
		for cp := 0; cp < factor; cp++ {
			dst := (g*factor+cp)*group + k
			for i := 0; i < r; i++ {
				o.Set(i, dst, a.At(i, j)*scale)
			}
		}
	}
	return o
}

func insertVec(v *mat.VecDense, at, n int) *mat.VecDense {
	l := v.Len()
	checkSpan("insertVec", at, 0, l)
	o := mat.NewVecDense(l+n, nil)
	for i := 0; i < l; i++ {
		dst := i
		if i >= at {
			dst += n
		}
		o.SetVec(dst, v.AtVec(i))
	}
	return o
}

func deleteVec(v *mat.VecDense, at, n int) *mat.VecDense {
	l := v.Len()
	checkSpan("deleteVec", at, n, l)
	o := mat.NewVecDense(l-n, nil)
	for i, dst := 0, 0; i < l; i++ {
		if i >= at && i < at+n {
			continue
		}
		o.SetVec(dst, v.AtVec(i))
		dst++
	}
	return o
}

func tileVec(v *mat.VecDense, group, factor int) *mat.VecDense {
	l := v.Len()
	o := mat.NewVecDense(l*factor, nil)
	for i := 0; i < l; i++ {
		g, k := i/group, i%group
		for cp := 0; cp < factor; cp++ {
			o.SetVec((g*factor+cp)*group+k, v.AtVec(i))
		}
	}
	return o
}

// checkSpan panics on index arithmetic bugs; callers validate user input first.
func checkSpan(op string, at, n, size int) {
	if at < 0 || n < 0 || at+n > size {
		panic(fmt.Sprintf("%s: span [%d,%d) out of range for size %d", op, at, at+n, size))
	}
}
