// Package version carries build information for the voicescribe binary.
//
// Values are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/voicescribe/version.Version=1.2.0" ./cmd/voicescribe
//
// Missing values fall back to the module build info recorded by the Go
// toolchain.
package version
