package version

// version is injected at build time via -ldflags.
var version = "v0.0.0"

// Value returns the build version of the binary.
func Value() string {
	return version
}
