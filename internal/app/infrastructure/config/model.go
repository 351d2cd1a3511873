package config

type Config struct {
	App       App               `json:"app"`
	Chat      Chat              `json:"chat"`
	Proxy     *Proxy            `json:"proxy"`
	Reconnect Reconnect         `json:"reconnect"`
	Dispatch  Dispatch          `json:"dispatch"`
	Banwords  Banwords          `json:"banwords"`
	Commands  map[string]string `json:"commands"` // ключ - триггер, значение - ответ ({user} заменяется ником)
	Timers    []Timer           `json:"timers"`
}

type App struct {
	LogLevel      string `json:"log_level"`
	LogFile       string `json:"log_file"`
	GinMode       string `json:"gin_mode"`
	HTTPAddr      string `json:"http_addr"`
	AuthToken     string `json:"auth_token"`
	StatusCommand string `json:"status_command"`
}

type Chat struct {
	Transport        string `json:"transport"` // tcp, tls, wss, ws
	Host             string `json:"host"`
	Port             int    `json:"port"`
	Username         string `json:"username"`
	OAuth            string `json:"oauth"`
	Channel          string `json:"channel"`
	Color            string `json:"color"`
	HandshakeTimeout int    `json:"handshake_timeout"` // в секундах
	ReadBufferSize   int    `json:"read_buffer_size"`
}

type Proxy struct {
	Address string `json:"address"`
	Port    int    `json:"port"`
}

type Reconnect struct {
	MaxTries     uint `json:"max_tries"`     // попыток на одну потерю соединения
	InitialDelay int  `json:"initial_delay"` // в миллисекундах
	MaxDelay     int  `json:"max_delay"`     // в миллисекундах
}

type Dispatch struct {
	Workers        int `json:"workers"`
	QueueSize      int `json:"queue_size"`
	HandlerTimeout int `json:"handler_timeout"` // в секундах
}

type Banwords struct {
	Patterns     []string `json:"patterns"`
	MatchTimeout int      `json:"match_timeout"` // в миллисекундах
	Cooldown     int      `json:"cooldown"`      // в секундах, 0 - бан на каждое совпадение
}

type Timer struct {
	Text     string `json:"text"`
	Interval int    `json:"interval"` // в минутах
}
