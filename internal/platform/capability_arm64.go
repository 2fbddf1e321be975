//go:build arm64

package platform

import "golang.org/x/sys/cpu"

func init() {
	hasASIMD = cpu.ARM64.HasASIMD
	hasSVE = cpu.ARM64.HasSVE
}
