package platform

import (
	"runtime"
	"strconv"
	"strings"

	"github.com/klauspost/cpuid/v2"
)

// Package-level state - initialized once at package init.
var (
	hasBMI2   bool // x86-64 PDEP/PEXT, the hardware bit-deposit path
	hasPOPCNT bool
	hasAVX2   bool
	hasASIMD  bool // ARM64 NEON
	hasSVE    bool // ARM64 SVE
)

// Capabilities is a snapshot of the detected CPU features.
type Capabilities struct {
	Arch          string
	Brand         string // empty when the CPU does not report one
	NumCPU        int
	PhysicalCores int // 0 when unknown
	Features      []string
}

// Detect returns the detected CPU features.
func Detect() Capabilities {
	c := Capabilities{
		Arch:          runtime.GOARCH,
		Brand:         cpuid.CPU.BrandName,
		NumCPU:        runtime.NumCPU(),
		PhysicalCores: cpuid.CPU.PhysicalCores,
	}
	for _, f := range []struct {
		name string
		ok   bool
	}{
		{"bmi2", hasBMI2},
		{"popcnt", hasPOPCNT},
		{"avx2", hasAVX2},
		{"asimd", hasASIMD},
		{"sve", hasSVE},
	} {
		if f.ok {
			c.Features = append(c.Features, f.name)
		}
	}
	return c
}

// String returns a compact one-line description, e.g. "amd64/8 [bmi2 avx2] Intel(R) Xeon(R)".
func (c Capabilities) String() string {
	var b strings.Builder
	b.WriteString(c.Arch)
	b.WriteByte('/')
	b.WriteString(strconv.Itoa(c.NumCPU))
	b.WriteString(" [")
	b.WriteString(strings.Join(c.Features, " "))
	b.WriteByte(']')
	if c.Brand != "" {
		b.WriteString(" ")
		b.WriteString(c.Brand)
	}
	return b.String()
}

// Has reports whether the named feature was detected.
func (c Capabilities) Has(feature string) bool {
	for _, f := range c.Features {
		if f == feature {
			return true
		}
	}
	return false
}
