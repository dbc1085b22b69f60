package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

// RunEventsChannel carries run events between service instances, so a viewer
// connected to any instance sees every run's frames.
const RunEventsChannel = "run_events"

var rdbClient *redis.Client

func SetRedisClient(r *redis.Client) {
	rdbClient = r
}

// StartRunEventSubscriber subscribes to the run_events channel and fans each
// event out to the local viewers of its run.
func StartRunEventSubscriber(ctx context.Context) {
	if rdbClient == nil {
		log.Println("[WS] Redis client not set; run event subscriber not started")
		return
	}

	pubsub := rdbClient.Subscribe(ctx, RunEventsChannel)
	ch := pubsub.Channel()
	go func() {
		log.Println("[WS] run_events subscriber started")
		for msg := range ch {
			var envelope struct {
				RunID string `json:"run_id"`
			}
			if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
				log.Printf("[WS] invalid run event payload: %v", err)
				continue
			}
			if envelope.RunID == "" {
				log.Printf("[WS] run event missing run_id: %s", msg.Payload)
				continue
			}
			RunHub.BroadcastRawToRun(envelope.RunID, []byte(msg.Payload))
		}
	}()
}
