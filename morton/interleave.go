package morton

import (
	"os"
	"strings"
)

// Kernel identifies a bit-interleave implementation.
type Kernel uint8

const (
	// KernelAuto picks the fastest kernel for the dimensionality.
	KernelAuto Kernel = iota
	// KernelGeneric loops over every axis and bit. Works for any D.
	KernelGeneric
	// KernelMagic2D spreads bits with shift-and-mask steps. D=2 only.
	KernelMagic2D
	// KernelMagic3D spreads bits with shift-and-mask steps. D=3 only.
	KernelMagic3D
)

// String returns the string representation of a Kernel.
func (k Kernel) String() string {
	switch k {
	case KernelAuto:
		return "auto"
	case KernelGeneric:
		return "generic"
	case KernelMagic2D:
		return "magic2d"
	case KernelMagic3D:
		return "magic3d"
	default:
		return "unknown"
	}
}

// ParseKernel parses a string into a Kernel value.
func ParseKernel(s string) (Kernel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto":
		return KernelAuto, true
	case "generic":
		return KernelGeneric, true
	case "magic2d":
		return KernelMagic2D, true
	case "magic3d":
		return KernelMagic3D, true
	default:
		return KernelAuto, false
	}
}

// KernelEnv names the environment variable that overrides automatic kernel
// selection (e.g. ZINDEX_MORTON_KERNEL=generic). Unusable overrides are ignored.
const KernelEnv = "ZINDEX_MORTON_KERNEL"

func supportsKernel(k Kernel, dims int) bool {
	switch k {
	case KernelGeneric:
		return true
	case KernelMagic2D:
		return dims == 2
	case KernelMagic3D:
		return dims == 3
	default:
		return false
	}
}

// selectKernel resolves KernelAuto for the given dimensionality.
func selectKernel(requested Kernel, dims int) (Kernel, error) {
	if requested != KernelAuto {
		if !supportsKernel(requested, dims) {
			return 0, &ErrInvalidKernel{Kernel: requested, Dimensions: dims}
		}
		return requested, nil
	}

	if override := os.Getenv(KernelEnv); override != "" {
		if k, ok := ParseKernel(override); ok && k != KernelAuto && supportsKernel(k, dims) {
			return k, nil
		}
	}

	switch dims {
	case 2:
		return KernelMagic2D, nil
	case 3:
		return KernelMagic3D, nil
	default:
		return KernelGeneric, nil
	}
}

// interleaveGeneric places bit j of voxels[i] at bit j*D+i.
func interleaveGeneric(voxels []uint64, order int) uint64 {
	d := len(voxels)
	var code uint64
	for i, v := range voxels {
		for j := 0; j < order; j++ {
			code |= ((v >> j) & 1) << (j*d + i)
		}
	}
	return code
}

func deinterleaveGeneric(code uint64, order int, dst []uint64) {
	d := len(dst)
	for i := range dst {
		var v uint64
		for j := 0; j < order; j++ {
			v |= ((code >> (j*d + i)) & 1) << j
		}
		dst[i] = v
	}
}

// spread2 moves the low 32 bits of x to the even bit positions.
func spread2(x uint64) uint64 {
	x &= 0x00000000ffffffff
	x = (x | x<<16) & 0x0000ffff0000ffff
	x = (x | x<<8) & 0x00ff00ff00ff00ff
	x = (x | x<<4) & 0x0f0f0f0f0f0f0f0f
	x = (x | x<<2) & 0x3333333333333333
	x = (x | x<<1) & 0x5555555555555555
	return x
}

func compact2(x uint64) uint64 {
	x &= 0x5555555555555555
	x = (x | x>>1) & 0x3333333333333333
	x = (x | x>>2) & 0x0f0f0f0f0f0f0f0f
	x = (x | x>>4) & 0x00ff00ff00ff00ff
	x = (x | x>>8) & 0x0000ffff0000ffff
	x = (x | x>>16) & 0x00000000ffffffff
	return x
}

// spread3 moves the low 21 bits of x to every third bit position.
func spread3(x uint64) uint64 {
	x &= 0x1fffff
	x = (x | x<<32) & 0x1f00000000ffff
	x = (x | x<<16) & 0x1f0000ff0000ff
	x = (x | x<<8) & 0x100f00f00f00f00f
	x = (x | x<<4) & 0x10c30c30c30c30c3
	x = (x | x<<2) & 0x1249249249249249
	return x
}

func compact3(x uint64) uint64 {
	x &= 0x1249249249249249
	x = (x | x>>2) & 0x10c30c30c30c30c3
	x = (x | x>>4) & 0x100f00f00f00f00f
	x = (x | x>>8) & 0x1f0000ff0000ff
	x = (x | x>>16) & 0x1f00000000ffff
	x = (x | x>>32) & 0x1fffff
	return x
}

func interleave(k Kernel, voxels []uint64, order int) uint64 {
	switch k {
	case KernelMagic2D:
		return spread2(voxels[0]) | spread2(voxels[1])<<1
	case KernelMagic3D:
		return spread3(voxels[0]) | spread3(voxels[1])<<1 | spread3(voxels[2])<<2
	default:
		return interleaveGeneric(voxels, order)
	}
}

func deinterleave(k Kernel, code uint64, order int, dst []uint64) {
	switch k {
	case KernelMagic2D:
		dst[0] = compact2(code)
		dst[1] = compact2(code >> 1)
	case KernelMagic3D:
		dst[0] = compact3(code)
		dst[1] = compact3(code >> 1)
		dst[2] = compact3(code >> 2)
	default:
		deinterleaveGeneric(code, order, dst)
	}
}
