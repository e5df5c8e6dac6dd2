// Package version exposes the build version, overridable at link time:
//
//	go build -ldflags "-X skyphase/pkg/version.Version=v1.2.3"
package version

// Version is the build version string.
var Version = "dev"
