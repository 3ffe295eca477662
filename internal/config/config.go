package config

import (
	"github.com/caarlos0/env/v11"
)

type Config struct {
	// LogLevel is the level of logs to output (debug|info|warn|error)
	LogLevel string `env:"LOG_LEVEL" default:"info"`

	// SourcePath is the byte source to frame packets from ("-" reads stdin)
	SourcePath string `env:"SOURCE_PATH" default:"-"`

	// ChannelCapacity is the bound on packets pending between the frame
	// reader and its consumer; the reader blocks when the channel is full
	ChannelCapacity int `env:"CHANNEL_CAPACITY" default:"1024"`

	// ShutdownTimeoutSeconds is the number of seconds to wait for graceful shutdown
	ShutdownTimeoutSeconds int `env:"SHUTDOWN_TIMEOUT_SECONDS" default:"15"`

	// RelayEnabled specifies whether decoded packets are republished to NATS
	RelayEnabled bool `env:"RELAY_ENABLED" default:"false"`

	// NATSClientPrefix is the prefix to use for the NATS client connection (prefix + hostname)
	NATSClientPrefix string `env:"NATS_CLIENT_PREFIX" default:"space-packets "`

	// NATSURL is the URL (with port) of the NATS server
	NATSURL string `env:"NATS_URL" default:"nats://localhost:4222"`

	// NATSOutgoingBufferSize is the size of the outgoing buffer for NATS connections
	NATSOutgoingBufferSize int `env:"NATS_OUTGOING_BUFFER_SIZE" default:"8388608"` // 8MB

	// NATSSubject is the subject decoded packet frames are published on
	NATSSubject string `env:"NATS_SUBJECT" default:"packets.decoded"`

	// ArchiveEnabled specifies whether decoded packets are written to the database
	ArchiveEnabled bool `env:"ARCHIVE_ENABLED" default:"false"`

	// DBConnectionString is the MySQL DSN for the packet archive
	DBConnectionString string `env:"DB_CONNECTION_STRING" default:"spacepackets:spacepackets@tcp(localhost:3306)/spacepackets?parseTime=true"`

	// DBQueryLogLevel is the level bun query logs are emitted at (debug|info)
	DBQueryLogLevel string `env:"DB_QUERY_LOG_LEVEL" default:"debug"`
}

func ParseConfigFromEnv() Config {
	return env.Must(env.ParseAsWithOptions[Config](env.Options{
		DefaultValueTagName: "default",
	}))
}
