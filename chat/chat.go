package chat

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"

	"caster/account"
	"caster/authority"
	"caster/bizerror"
	"caster/session"

	"github.com/fundwit/go-commons/types"
	"github.com/go-redis/redis/v8"
)

// Every episode chat is one redis pub/sub channel. Messages are not stored;
// a subscriber only sees what is published while it listens.
func ChannelOf(episodeId types.ID) string {
	return "ep:" + episodeId.String()
}

type MessageSend struct {
	EpisodeID types.ID `json:"episodeId" binding:"required"`
	Text      string   `json:"text" binding:"required,lte=2048"`
}

// Message is what subscribers receive. The sender profile is censored per
// the receiver's ability before delivery.
type Message struct {
	EpisodeID types.ID        `json:"episodeId"`
	Sender    account.Profile `json:"sender"`
	Text      string          `json:"text"`
	SendTime  time.Time       `json:"sendTime"`
}

// wireMessage is the redis payload. Only the sender profile id travels on
// the wire; each receiver resolves and censors the profile itself.
type wireMessage struct {
	SenderProfileID types.ID  `json:"senderProfileId"`
	Text            string    `json:"text"`
	SendTime        time.Time `json:"sendTime"`
}

var (
	chatClient *redis.Client

	SendMessageFunc = SendMessage
	SubscribeFunc   = Subscribe
)

// Bootstrap connects the chat client. REDIS_ADDRESS empty leaves chat
// disabled; sends and subscriptions then fail with an explicit error.
func Bootstrap() error {
	address := os.Getenv("REDIS_ADDRESS")
	if address == "" {
		return nil
	}
	chatClient = redis.NewClient(&redis.Options{
		Addr:     address,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	return chatClient.Ping(context.Background()).Err()
}

// UseClient swaps the chat client, for tests.
func UseClient(c *redis.Client) {
	chatClient = c
}

func messageAuthzSubject(episodeId, profileId types.ID) authority.Subject {
	fields := authority.Conditions{"episodeId": episodeId.String()}
	if profileId != 0 {
		fields["profileId"] = profileId.String()
	}
	return authority.InstanceSubject("Message", fields)
}

func SendMessage(m MessageSend, sec *session.Session) error {
	if chatClient == nil {
		return errors.New("chat is not enabled")
	}
	if sec.ProfileID() == 0 {
		return bizerror.ErrNoProfile
	}
	if sec.Ability.Cannot(authority.ActionCreate, messageAuthzSubject(m.EpisodeID, sec.ProfileID())) {
		return bizerror.ErrForbidden
	}

	payload, err := json.Marshal(wireMessage{
		SenderProfileID: sec.ProfileID(),
		Text:            m.Text,
		SendTime:        time.Now(),
	})
	if err != nil {
		return err
	}
	return chatClient.Publish(sec.Context, ChannelOf(m.EpisodeID), payload).Err()
}

// Subscription delivers the messages of one episode channel until closed.
type Subscription struct {
	C <-chan Message

	pubsub *redis.PubSub
	done   chan struct{}
	closer sync.Once
}

// Close tears down the redis subscription and releases the pump goroutine,
// even when nobody drains C anymore.
func (s *Subscription) Close() error {
	s.closer.Do(func() { close(s.done) })
	return s.pubsub.Close()
}

func Subscribe(episodeId types.ID, sec *session.Session) (*Subscription, error) {
	if chatClient == nil {
		return nil, errors.New("chat is not enabled")
	}
	if sec.Ability.Cannot(authority.ActionRead, messageAuthzSubject(episodeId, 0)) {
		return nil, bizerror.ErrForbidden
	}

	ctx := sec.Context
	if ctx == nil {
		ctx = context.Background()
	}
	pubsub := chatClient.Subscribe(ctx, ChannelOf(episodeId))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	out := make(chan Message, 16)
	done := make(chan struct{})
	go func() {
		defer close(out)
		for {
			var raw *redis.Message
			var open bool
			select {
			case raw, open = <-pubsub.Channel():
				if !open {
					return
				}
			case <-done:
				return
			}

			message, err := deliverable(episodeId, raw.Payload, sec)
			if err != nil {
				continue
			}
			select {
			case out <- *message:
			case <-done:
				return
			}
		}
	}()
	return &Subscription{C: out, pubsub: pubsub, done: done}, nil
}

// deliverable resolves the sender profile of one wire payload and censors
// it down to what the receiving ability may see.
func deliverable(episodeId types.ID, payload string, sec *session.Session) (*Message, error) {
	wire := wireMessage{}
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		return nil, err
	}

	sender, err := account.ProfileByIDFunc(wire.SenderProfileID)
	if err != nil {
		return nil, err
	}
	censored := account.CensorProfile(*sender,
		sec.Ability.Censor(sender.AuthzSubject(), account.ProfileFieldPolicy))

	return &Message{
		EpisodeID: episodeId,
		Sender:    censored,
		Text:      wire.Text,
		SendTime:  wire.SendTime,
	}, nil
}
