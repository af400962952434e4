//go:build amd64

package buffer

import "golang.org/x/sys/cpu"

func init() {
	if NoSimdEnv() {
		align = minAlign
		return
	}
	switch {
	case cpu.X86.HasAVX512F:
		align = 64
	case cpu.X86.HasAVX2:
		align = 32
	default:
		align = minAlign
	}
}
