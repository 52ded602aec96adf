package heartbeat

import (
	"context"
	"encoding/json"
	"time"

	"armservo-go/bus"
)

var topicConfigHeartbeat = bus.T("config", "heartbeat")

type Service struct{}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(1 * time.Second)
	defer tick.Stop()

	// loop until context is cancelled, respond to tick and config changes
	for {
		select {
		case <-ctx.Done():
			println("[heartbeat] stopping")
			return
		case t := <-tick.C:
			println("[heartbeat]", t.Format("15:04:05"))
		case msg := <-cfgSub.Channel():
			if iv, ok := intervalSeconds(msg.Payload); ok {
				tick.Reset(time.Duration(iv) * time.Second)
				println("[heartbeat] interval set to", iv, "seconds")
			}
		}
	}
}

func intervalSeconds(payload any) (int, bool) {
	var cfg struct {
		Interval int `json:"interval"`
	}
	switch v := payload.(type) {
	case []byte:
		if json.Unmarshal(v, &cfg) != nil {
			return 0, false
		}
	case string:
		if json.Unmarshal([]byte(v), &cfg) != nil {
			return 0, false
		}
	case map[string]any:
		if f, ok := v["interval"].(float64); ok {
			cfg.Interval = int(f)
		}
	default:
		return 0, false
	}
	if cfg.Interval <= 0 {
		return 0, false
	}
	return cfg.Interval, true
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
