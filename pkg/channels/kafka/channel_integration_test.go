package kafka_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/contractpulse/flowdesigner/pkg/channels/kafka"
	"github.com/contractpulse/flowdesigner/pkg/eventbus"
	"github.com/contractpulse/flowdesigner/pkg/events"
	"github.com/contractpulse/flowdesigner/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkaTc "github.com/testcontainers/testcontainers-go/modules/kafka"
)

func startKafka(t *testing.T) string {
	t.Helper()

	ctx := context.Background()

	container, err := kafkaTc.Run(ctx, "confluentinc/confluent-local:7.7.0", testcontainers.WithEnv(map[string]string{
		"KAFKA_CREATE_TOPICS": "true",
	}))
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("Failed to terminate Kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)

	admin, err := sarama.NewClusterAdmin(brokers, sarama.NewConfig())
	require.NoError(t, err)

	defer func() { _ = admin.Close() }()

	err = admin.CreateTopic(events.Topic, &sarama.TopicDetail{NumPartitions: 1, ReplicationFactor: 1}, false)
	require.NoError(t, err)

	return brokers[0]
}

func TestCreateChannel_PublishesLifecycleEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Kafka integration test in short mode")
	}

	t.Setenv("KAFKA_BROKERS", startKafka(t))

	pub, sub, err := kafka.CreateChannel(watermill.NopLogger{}, "flowdesigner-test")
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)

	defer func() { _ = bus.Close() }()

	var received atomic.Value

	err = bus.Handle(events.WorkflowSavedEvent, func(_ context.Context, event any) error {
		received.Store(event)

		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	workflow := models.NewWorkflow("wf-kafka", "Kafka Intake")
	require.NoError(t, bus.Publish(ctx, workflow.ID, events.NewWorkflowSaved(workflow, false)))

	require.Eventually(t, func() bool {
		return received.Load() != nil
	}, 60*time.Second, 200*time.Millisecond)

	saved, ok := received.Load().(*events.WorkflowSaved)
	require.True(t, ok)
	assert.Equal(t, "wf-kafka", saved.WorkflowID)
	assert.Equal(t, "Kafka Intake", saved.Name)
}
