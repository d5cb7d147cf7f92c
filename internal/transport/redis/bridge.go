package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
)

const (
	messageTypeMove = "move"

	publishTimeout = 5 * time.Second
)

var ErrSubscriptionClosed = errors.New("broker subscription closed")

type replayer interface {
	Replay(ctx context.Context, move entity.Move) error
}

// moveMessage is the wire format on the shared channel. InstanceID lets an
// instance recognise and skip its own publishes.
type moveMessage struct {
	Type       string `json:"type"`
	GameID     string `json:"gameId"`
	PlayerID   string `json:"playerId"`
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	InstanceID string `json:"instanceId,omitempty"`
}

func (that moveMessage) move() entity.Move {
	return entity.Move{GameID: that.GameID, PlayerID: that.PlayerID, Row: that.Row, Col: that.Col}
}

// Bridge propagates locally applied moves to the other instances over a
// Redis channel and feeds their moves back in as replays.
type Bridge struct {
	logger     *slog.Logger
	client     *redis.Client
	channel    string
	instanceID string
}

func NewBridge(logger *slog.Logger, client *redis.Client, channel string) *Bridge {
	instanceID := uuid.NewString()

	return &Bridge{
		logger:     logger.With("component", "broker", "instanceID", instanceID),
		client:     client,
		channel:    channel,
		instanceID: instanceID,
	}
}

func (that *Bridge) InstanceID() string {
	return that.instanceID
}

// PublishMove sends the move to every subscribed instance. There is no retry.
func (that *Bridge) PublishMove(ctx context.Context, move entity.Move) error {
	payload, err := json.Marshal(moveMessage{
		Type:       messageTypeMove,
		GameID:     move.GameID,
		PlayerID:   move.PlayerID,
		Row:        move.Row,
		Col:        move.Col,
		InstanceID: that.instanceID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal move: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err = that.client.Publish(ctx, that.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish move: %w", err)
	}

	return nil
}

// Subscription is a confirmed subscription to the move channel.
type Subscription struct {
	bridge   *Bridge
	pubsub   *redis.PubSub
	replayer replayer
}

// Subscribe joins the move channel and returns once Redis has confirmed it,
// so no publish made after Subscribe returns is missed.
func (that *Bridge) Subscribe(ctx context.Context, replayer replayer) (*Subscription, error) {
	pubsub := that.client.Subscribe(ctx, that.channel)

	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", that.channel, err)
	}

	that.logger.Info("subscribed to broker channel", "channel", that.channel)

	return &Subscription{bridge: that, pubsub: pubsub, replayer: replayer}, nil
}

// Run replays received moves until ctx is canceled or the subscription
// closes.
func (that *Subscription) Run(ctx context.Context) error {
	defer that.pubsub.Close()

	messages := that.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return ErrSubscriptionClosed
			}
			that.bridge.handleMessage(ctx, msg.Payload, that.replayer)
		}
	}
}

func (that *Bridge) handleMessage(ctx context.Context, payload string, replayer replayer) {
	log := that.logger.With("method", "handleMessage")

	var message moveMessage
	if err := json.Unmarshal([]byte(payload), &message); err != nil {
		log.Warn("dropping malformed broker message", "error", err)
		return
	}

	if message.Type != messageTypeMove {
		log.Warn("dropping broker message of unknown type", "type", message.Type)
		return
	}

	if message.InstanceID == that.instanceID {
		return
	}

	move := message.move()
	if err := move.Validate(); err != nil {
		log.Warn("dropping invalid broker move", "error", err)
		return
	}

	if err := replayer.Replay(ctx, move); err != nil {
		log.Error("failed to replay move", "gameID", move.GameID, "error", err)
	}
}
