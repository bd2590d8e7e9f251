// Package buildinfo reports the version of the running binary.
//
// Release builds inject values via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/notechain-go/internal/infra/buildinfo.Version=v1.0.0 \
//	  -X github.com/yndnr/notechain-go/internal/infra/buildinfo.Commit=abc123"
//
// Development builds fall back to the module metadata embedded by the Go
// toolchain.
package buildinfo
