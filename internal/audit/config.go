package audit

const DefaultFileName = "log.txt"

type Config struct {
	Dir             string // Log directory; resolved by the PathResolver when empty
	FileName        string
	TruncateOnStart bool // Start every application session with an empty log
}
