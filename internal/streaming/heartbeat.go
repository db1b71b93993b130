package streaming

import (
	"context"
	"fmt"
	"time"

	"github.com/lvyanru/weather-apiserver/internal/domain/entity"
)

// Heartbeat defaults used when the config leaves them unset.
const (
	DefaultHeartbeatCount    = 5
	DefaultHeartbeatInterval = time.Second
)

// Heartbeat opens a liveness stream: a fixed number of ping events spaced
// by the configured interval, then channel close. The session layer is
// never involved. Cancellation stops the stream without a further event.
func (e *Engine) Heartbeat(ctx context.Context) <-chan entity.StreamMessage {
	count := e.cfg.HeartbeatCount
	if count <= 0 {
		count = DefaultHeartbeatCount
	}
	interval := e.cfg.HeartbeatInterval
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}

	out := make(chan entity.StreamMessage, e.cfg.Buffer)
	go func() {
		defer close(out)
		for i := 1; i <= count; i++ {
			if i > 1 {
				timer := time.NewTimer(interval)
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
			}
			if !e.send(ctx, out, entity.StreamMessage{
				Type:      entity.StreamMessagePing,
				Payload:   fmt.Sprintf("ping %d/%d", i, count),
				Timestamp: time.Now(),
			}) {
				return
			}
		}
	}()
	return out
}
