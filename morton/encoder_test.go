package morton

import (
	"math"
	"testing"

	"github.com/hupe1980/zindex/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cube(t *testing.T, dims int) geom.BoundingBox {
	t.Helper()
	box, err := geom.Cube(dims, -1, 1)
	require.NoError(t, err)
	return box
}

func TestNewEncoder(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		enc, err := NewEncoder(cube(t, 3), 10)
		require.NoError(t, err)
		assert.Equal(t, 3, enc.Dimensions())
		assert.Equal(t, 10, enc.Order())
		assert.Equal(t, Width64, enc.Width())
		assert.Equal(t, BoundsReject, enc.Bounds())
		assert.Equal(t, uint64(1023), enc.MaxVoxel())
	})

	t.Run("OrderExceedsWidth", func(t *testing.T) {
		_, err := NewEncoder(cube(t, 3), 11, func(o *Options) { o.Width = Width32 })
		var io *ErrInvalidOrder
		require.ErrorAs(t, err, &io)
		assert.Equal(t, 11, io.Order)
		assert.Equal(t, 3, io.Dimensions)
		assert.Equal(t, Width32, io.Width)
	})

	t.Run("OrderFitsWidthExactly", func(t *testing.T) {
		_, err := NewEncoder(cube(t, 2), 16, func(o *Options) { o.Width = Width32 })
		require.NoError(t, err)
		_, err = NewEncoder(cube(t, 2), 32)
		require.NoError(t, err)
		_, err = NewEncoder(cube(t, 1), 64)
		require.NoError(t, err)
	})

	t.Run("ZeroOrder", func(t *testing.T) {
		_, err := NewEncoder(cube(t, 2), 0)
		assert.IsType(t, &ErrInvalidOrder{}, err)
	})

	t.Run("InvalidWidth", func(t *testing.T) {
		_, err := NewEncoder(cube(t, 2), 4, func(o *Options) { o.Width = 16 })
		assert.IsType(t, &ErrInvalidWidth{}, err)
	})

	t.Run("InvalidBox", func(t *testing.T) {
		box := geom.BoundingBox{Min: geom.Point{0, 1}, Max: geom.Point{1, 1}}
		_, err := NewEncoder(box, 4)
		assert.IsType(t, &geom.ErrInvalidBox{}, err)
	})

	t.Run("ForcedKernelMismatch", func(t *testing.T) {
		_, err := NewEncoder(cube(t, 4), 4, func(o *Options) { o.Kernel = KernelMagic3D })
		var ik *ErrInvalidKernel
		require.ErrorAs(t, err, &ik)
		assert.Equal(t, 4, ik.Dimensions)
	})

	t.Run("AutoKernel", func(t *testing.T) {
		for dims, want := range map[int]Kernel{1: KernelGeneric, 2: KernelMagic2D, 3: KernelMagic3D, 4: KernelGeneric} {
			enc, err := NewEncoder(cube(t, dims), 4)
			require.NoError(t, err)
			assert.Equal(t, want, enc.Kernel(), "dims=%d", dims)
		}
	})

	t.Run("KernelEnvOverride", func(t *testing.T) {
		t.Setenv(KernelEnv, "generic")
		enc, err := NewEncoder(cube(t, 2), 4)
		require.NoError(t, err)
		assert.Equal(t, KernelGeneric, enc.Kernel())

		t.Setenv(KernelEnv, "magic3d")
		enc, err = NewEncoder(cube(t, 2), 4)
		require.NoError(t, err)
		assert.Equal(t, KernelMagic2D, enc.Kernel(), "unusable override is ignored")
	})
}

func TestEncodeFourCells(t *testing.T) {
	enc, err := NewEncoder(cube(t, 2), 1)
	require.NoError(t, err)

	tests := []struct {
		point  geom.Point
		voxels []uint64
		code   uint64
	}{
		{geom.Point{-0.5, -0.5}, []uint64{0, 0}, 0b00},
		{geom.Point{0.5, -0.5}, []uint64{1, 0}, 0b01},
		{geom.Point{-0.5, 0.5}, []uint64{0, 1}, 0b10},
		{geom.Point{0.5, 0.5}, []uint64{1, 1}, 0b11},
	}

	for _, tt := range tests {
		voxels, err := enc.Voxels(tt.point)
		require.NoError(t, err)
		assert.Equal(t, tt.voxels, voxels)

		code, err := enc.Encode(tt.point)
		require.NoError(t, err)
		assert.Equal(t, tt.code, code, "point %v", tt.point)
	}
}

func TestEncodeBitLayout(t *testing.T) {
	// Bit j of axis i must land at j*D+i.
	for _, kernel := range []Kernel{KernelGeneric, KernelMagic3D} {
		enc, err := NewEncoder(cube(t, 3), 4, func(o *Options) { o.Kernel = kernel })
		require.NoError(t, err)

		for axis := range 3 {
			for bit := range 4 {
				voxels := make([]uint64, 3)
				voxels[axis] = 1 << bit
				code, err := enc.Interleave(voxels)
				require.NoError(t, err)
				assert.Equal(t, uint64(1)<<(bit*3+axis), code, "kernel=%s axis=%d bit=%d", kernel, axis, bit)
			}
		}
	}
}

func TestCellSeparation(t *testing.T) {
	// D=2, order=3: 64 cells must map to 64 distinct codes in [0, 64).
	enc, err := NewEncoder(cube(t, 2), 3)
	require.NoError(t, err)

	seen := make(map[uint64][]uint64, 64)
	for x := uint64(0); x < 8; x++ {
		for y := uint64(0); y < 8; y++ {
			code, err := enc.Interleave([]uint64{x, y})
			require.NoError(t, err)
			require.Less(t, code, uint64(64))
			prev, dup := seen[code]
			require.False(t, dup, "code %d shared by %v and %v", code, prev, []uint64{x, y})
			seen[code] = []uint64{x, y}
		}
	}
	assert.Len(t, seen, 64)
}

func TestCellIdentity(t *testing.T) {
	enc, err := NewEncoder(cube(t, 3), 4)
	require.NoError(t, err)

	// Two points inside the same cell of width 2/16 = 0.125.
	a := geom.Point{0.126, -0.99, 0.5}
	b := geom.Point{0.249, -0.876, 0.6}

	va, err := enc.Voxels(a)
	require.NoError(t, err)
	vb, err := enc.Voxels(b)
	require.NoError(t, err)
	require.Equal(t, va, vb)

	ca, err := enc.Encode(a)
	require.NoError(t, err)
	cb, err := enc.Encode(b)
	require.NoError(t, err)
	assert.Equal(t, ca, cb)
}

func TestKernelsAgree(t *testing.T) {
	for dims, order := range map[int]int{2: 32, 3: 21} {
		magic, err := NewEncoder(cube(t, dims), order)
		require.NoError(t, err)
		generic, err := NewEncoder(cube(t, dims), magic.Order(), func(o *Options) { o.Kernel = KernelGeneric })
		require.NoError(t, err)
		require.NotEqual(t, KernelGeneric, magic.Kernel())

		// Deterministic spread of coordinates over the box.
		for n := 0; n < 2000; n++ {
			p := make(geom.Point, dims)
			for i := range p {
				p[i] = math.Mod(float64(n*(i+7))*0.6180339887, 2) - 1
			}
			cm, err := magic.Encode(p)
			require.NoError(t, err)
			cg, err := generic.Encode(p)
			require.NoError(t, err)
			require.Equal(t, cg, cm, "dims=%d point=%v", dims, p)
		}
	}
}

func TestDeinterleave(t *testing.T) {
	for _, dims := range []int{1, 2, 3, 5} {
		enc, err := NewEncoder(cube(t, dims), 60/dims)
		require.NoError(t, err)

		voxels := make([]uint64, dims)
		for i := range voxels {
			voxels[i] = (uint64(i+1) * 0x9e3779b97f4a7c15) & enc.MaxVoxel()
		}
		code, err := enc.Interleave(voxels)
		require.NoError(t, err)
		assert.Equal(t, voxels, enc.Deinterleave(code), "dims=%d", dims)
	}
}

func TestCellBox(t *testing.T) {
	enc, err := NewEncoder(cube(t, 2), 1)
	require.NoError(t, err)

	cell := enc.CellBox(0b01)
	assert.InDeltaSlice(t, []float64{0, -1}, cell.Min, 1e-12)
	assert.InDeltaSlice(t, []float64{1, 0}, cell.Max, 1e-12)
	assert.True(t, cell.Contains(geom.Point{0.5, -0.5}))
}

func TestEncodeBounds(t *testing.T) {
	t.Run("Reject", func(t *testing.T) {
		enc, err := NewEncoder(cube(t, 2), 4)
		require.NoError(t, err)

		for _, p := range []geom.Point{{1.01, 0}, {0, -1.5}, {1, 0}, {math.NaN(), 0}, {math.Inf(1), 0}} {
			_, err := enc.Encode(p)
			var oob *ErrOutOfBounds
			require.ErrorAs(t, err, &oob, "point %v", p)
		}

		_, err = enc.Encode(geom.Point{-1, -1})
		require.NoError(t, err, "min is inclusive")
	})

	t.Run("Clamp", func(t *testing.T) {
		enc, err := NewEncoder(cube(t, 2), 4, func(o *Options) { o.Bounds = BoundsClamp })
		require.NoError(t, err)

		voxels, err := enc.Voxels(geom.Point{1.01, -7})
		require.NoError(t, err)
		assert.Equal(t, []uint64{15, 0}, voxels)

		edge, err := enc.Encode(geom.Point{0.999, -0.999})
		require.NoError(t, err)
		clamped, err := enc.Encode(geom.Point{1.01, -7})
		require.NoError(t, err)
		assert.Equal(t, edge, clamped)

		_, err = enc.Encode(geom.Point{math.NaN(), 0})
		assert.IsType(t, &ErrOutOfBounds{}, err)
	})

	t.Run("JustBelowMax", func(t *testing.T) {
		enc, err := NewEncoder(cube(t, 1), 52)
		require.NoError(t, err)
		voxels, err := enc.Voxels(geom.Point{math.Nextafter(1, 0)})
		require.NoError(t, err)
		assert.LessOrEqual(t, voxels[0], enc.MaxVoxel())
	})
}

func TestEncodeDimensionMismatch(t *testing.T) {
	enc, err := NewEncoder(cube(t, 3), 4)
	require.NoError(t, err)

	_, err = enc.Encode(geom.Point{0, 0})
	var dm *geom.ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 3, dm.Expected)
	assert.Equal(t, 2, dm.Actual)

	_, err = enc.Interleave([]uint64{1, 2})
	assert.IsType(t, &geom.ErrDimensionMismatch{}, err)

	_, err = enc.Interleave([]uint64{16, 0, 0})
	assert.IsType(t, &ErrOutOfBounds{}, err)
}

func TestParseKernel(t *testing.T) {
	for _, k := range []Kernel{KernelAuto, KernelGeneric, KernelMagic2D, KernelMagic3D} {
		got, ok := ParseKernel(" " + k.String() + " ")
		require.True(t, ok)
		assert.Equal(t, k, got)
	}
	_, ok := ParseKernel("avx512")
	assert.False(t, ok)
}

func BenchmarkEncode(b *testing.B) {
	for _, kernel := range []Kernel{KernelGeneric, KernelMagic3D} {
		b.Run(kernel.String(), func(b *testing.B) {
			box, _ := geom.Cube(3, -1, 1)
			enc, err := NewEncoder(box, 10, func(o *Options) { o.Kernel = kernel })
			require.NoError(b, err)
			p := geom.Point{0.1, -0.2, 0.3}

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = enc.Encode(p)
			}
		})
	}
}
