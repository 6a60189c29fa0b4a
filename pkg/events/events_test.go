package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thankyoudiscord/waitlist/pkg/waitlist"
)

func TestNewNone(t *testing.T) {
	for _, driver := range []string{"", DriverNone} {
		p, err := New(Config{Driver: driver})
		require.NoError(t, err)
		require.IsType(t, Nop{}, p)
		require.NoError(t, p.Publish(context.Background(), waitlist.SubjectSignupCreated, nil))
		require.NoError(t, p.Close())
	}
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(Config{Driver: "pigeon"})
	require.Error(t, err)
}

func TestNewKafkaDoesNotDial(t *testing.T) {
	p, err := New(Config{Driver: DriverKafka, KafkaBrokers: []string{"127.0.0.1:1"}, KafkaTopic: "waitlist-events"})
	require.NoError(t, err)
	require.IsType(t, &KafkaPublisher{}, p)
	require.NoError(t, p.Close())
}

func TestKafkaMessage(t *testing.T) {
	ref := "ABCD1234"
	msg, err := kafkaMessage(waitlist.SubjectSignupCreated, waitlist.SignupCreated{
		ID:         "id-1",
		Email:      "a@x.com",
		Position:   7,
		ReferredBy: &ref,
	})
	require.NoError(t, err)

	require.Equal(t, waitlist.SubjectSignupCreated, string(msg.Key))
	require.Len(t, msg.Headers, 1)
	require.Equal(t, subjectHeader, msg.Headers[0].Key)

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	require.Equal(t, "id-1", body["id"])
	require.Equal(t, float64(7), body["position"])
	require.Equal(t, ref, body["referred_by"])
}

func TestNATSConnectFailure(t *testing.T) {
	_, err := New(Config{Driver: DriverNATS, NATSURL: "nats://127.0.0.1:1"})
	require.Error(t, err)
}
