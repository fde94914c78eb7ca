package server

// Config is the server's immutable-after-startup configuration (spec
// §3 ServerConfig). It is populated once from CLI flags in
// cmd/miniredis and then shared read-only by every connection handler.
type Config struct {
	Host           string
	Port           int
	Dir            string // RDB directory, advisory only (spec §6)
	DBFilename     string // RDB filename, advisory only (spec §6)
	MasterHostPort string // "" means this server is a master
}

// IsReplica reports whether MasterHostPort was set.
func (c Config) IsReplica() bool { return c.MasterHostPort != "" }

// DefaultConfig matches spec §6's CLI defaults.
func DefaultConfig() Config {
	return Config{
		Host:       "127.0.0.1",
		Port:       6379,
		Dir:        ".",
		DBFilename: "dump.rdb",
	}
}
