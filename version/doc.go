// Package version exposes the build version of flowkit binaries.
//
// Version, git commit, branch, and build time are set at compile time
// via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/flowkit/version.Version=1.0.0" ./cmd/flowpipe
//
// Unset values fall back to the VCS stamp of runtime/debug build info.
package version
