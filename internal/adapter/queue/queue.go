package queue

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/seu-repo/appinventor-skill/internal/ports"
	"github.com/seu-repo/appinventor-skill/pkg/config"
)

// New connects the configured broker. It returns nil, nil when no broker is configured.
func New(cfg config.QueueConfig, log *zap.Logger) (ports.MessageQueue, error) {
	switch cfg.Driver {
	case "", "none":
		return nil, nil
	case "nats":
		q, err := NewNATSQueue(cfg.URL, log)
		if err != nil {
			return nil, err
		}
		return q, nil
	case "rabbitmq":
		q, err := NewRabbitMQQueue(cfg.URL, log)
		if err != nil {
			return nil, err
		}
		return q, nil
	default:
		return nil, fmt.Errorf("unknown queue driver %q", cfg.Driver)
	}
}
