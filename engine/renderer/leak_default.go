//go:build !debug

package renderer

// leakDetectionDefault is off in release builds; build with -tags debug to turn it on.
const leakDetectionDefault = false
