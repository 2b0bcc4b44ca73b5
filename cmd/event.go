package cmd

import (
	"context"

	"github.com/frahmantamala/task-management/internal/core/events"
	"github.com/frahmantamala/task-management/pkg/logger"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Manage events: publish test events through the audit subscribers`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test event",
	Long:  `Publish a test domain event to the event bus for testing and debugging`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		publishTestEvent(cmd.Context(), args[0])
	},
}

var (
	eventData     string
	eventActorID  int64
	eventEntityID int64
)

func publishTestEvent(ctx context.Context, eventType string) {
	log := logger.LoggerWrapper()

	eventBus := events.NewEventBus(log)
	events.SubscribeAuditLog(eventBus, log)

	if !lo.Contains(events.AuditedEventTypes, eventType) {
		eventBus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			log.Info("test handler received event",
				"event_id", event.EventID(),
				"event_type", event.EventType(),
				"payload", event.Payload())
			return nil
		})
	}

	testEvent := events.NewEntityEvent(eventType, eventActorID, eventEntityID, map[string]interface{}{
		"message": eventData,
		"source":  "cli-command",
	})

	log.Info("publishing test event", "event_type", eventType, "event_id", testEvent.EventID())
	if err := eventBus.Publish(ctx, testEvent); err != nil {
		log.Error("failed to publish event", "error", err)
		return
	}

	eventBus.Wait()
	log.Info("test event published successfully")
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "Event data message")
	publishEventCmd.Flags().Int64Var(&eventActorID, "actor-id", 1, "actor id recorded on the event")
	publishEventCmd.Flags().Int64Var(&eventEntityID, "entity-id", 0, "entity id recorded on the event")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
