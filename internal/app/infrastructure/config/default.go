package config

const (
	TransportTCP       = "tcp"
	TransportTLS       = "tls"
	TransportWebSocket = "wss"
	TransportPlainWS   = "ws"
)

func (m *Manager) GetDefault() *Config {
	return &Config{
		App: App{
			LogLevel:      "info",
			GinMode:       "release",
			HTTPAddr:      ":8080",
			StatusCommand: "!status",
		},
		Chat: Chat{
			Transport:        TransportTCP,
			Host:             "irc.chat.twitch.tv",
			Port:             6667,
			Color:            "CadetBlue",
			HandshakeTimeout: 30,
			ReadBufferSize:   4096,
		},
		Reconnect: Reconnect{
			MaxTries:     1,
			InitialDelay: 1000,
			MaxDelay:     30000,
		},
		Dispatch: Dispatch{
			Workers:        16,
			QueueSize:      1024,
			HandlerTimeout: 10,
		},
		Banwords: Banwords{
			Patterns:     []string{},
			MatchTimeout: 100,
		},
		Commands: make(map[string]string),
		Timers:   []Timer{},
	}
}
