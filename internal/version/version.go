package version

// Version contains the application version information.
// Set via build-time ldflags:
// go build -ldflags "-X git.home.luguber.info/inful/trac2md/internal/version.Version=v0.3.0".
var Version = "dev"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)
