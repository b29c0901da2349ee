// Package version holds the build identity reported by the server, the CLI and traces.
package version

// Service is the service name used in logs, traces and health checks
const Service = "dealicious"

// Version is set at build time with -ldflags "-X github.com/9endu/Dealicious/internal/version.Version=..."
var Version = "1.0.0"
