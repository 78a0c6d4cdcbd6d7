package process

// DefaultBinary is used when no binary is configured.
const DefaultBinary = "svn"

type Config struct {
	Binary     string   // Path or name of the VCS executable
	GlobalArgs []string // Arguments prepended to every invocation
}
