package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pion/webrtc/v4"
)

type Config struct {
	Debug  bool   `env:"DEBUG" envDefault:"false"`
	Port   string `env:"PORT" envDefault:"3000"`
	Domain string `env:"DOMAIN" envDefault:"http://localhost:3000"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	// WebsocketEnabled выключается на хостингах без долгоживущих соединений;
	// клиенты тогда работают только через polled inbox.
	WebsocketEnabled bool `env:"WEBSOCKET_ENABLED" envDefault:"true"`

	Room         RoomConfig
	Notification NotificationConfig
	Stun         StunConfig
	Coturn       CoturnConfig

	ICEServers []webrtc.ICEServer
}

type RoomConfig struct {
	// TTL for rooms that never got a guest.
	TTL           time.Duration `env:"ROOM_TTL" envDefault:"30m"`
	SweepInterval time.Duration `env:"ROOM_SWEEP_INTERVAL" envDefault:"5m"`
}

type NotificationConfig struct {
	Retention time.Duration `env:"NOTIFICATION_RETENTION" envDefault:"1h"`
}

type StunConfig struct {
	URL string `env:"STUN_URL" envDefault:"stun:stun.l.google.com:19302"`
}

type CoturnConfig struct {
	Host     string `env:"COTURN_HOST"`
	Username string `env:"COTURN_USERNAME"`
	Password string `env:"COTURN_PASSWORD"`
}

func New() (*Config, error) {
	c, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	c.ICEServers = []webrtc.ICEServer{
		{URLs: []string{c.Stun.URL}},
	}

	if c.Coturn.Host != "" {
		c.ICEServers = append(c.ICEServers,
			webrtc.ICEServer{
				URLs:       []string{fmt.Sprintf("turn:%s?transport=udp", c.Coturn.Host)},
				Username:   c.Coturn.Username,
				Credential: c.Coturn.Password,
			},
			webrtc.ICEServer{
				URLs:       []string{fmt.Sprintf("turn:%s?transport=tcp", c.Coturn.Host)},
				Username:   c.Coturn.Username,
				Credential: c.Coturn.Password,
			},
		)
	}

	return &c, nil
}
