// Package version reports the build version, used for the default
// User-Agent and the CLI's version command.
//
//	go build -ldflags "-X github.com/kbukum/netfoundation/version.Version=1.0.0"
package version
