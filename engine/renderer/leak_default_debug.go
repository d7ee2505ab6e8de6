//go:build debug

package renderer

const leakDetectionDefault = true
