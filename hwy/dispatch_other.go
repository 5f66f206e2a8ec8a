//go:build !amd64 && !arm64

package hwy

// Other architectures keep the scalar target.
