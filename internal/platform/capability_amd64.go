//go:build amd64

package platform

import "golang.org/x/sys/cpu"

func init() {
	hasBMI2 = cpu.X86.HasBMI2
	hasPOPCNT = cpu.X86.HasPOPCNT
	hasAVX2 = cpu.X86.HasAVX2
}
