package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	grpcEncoding "google.golang.org/grpc/encoding"
	_ "google.golang.org/grpc/encoding/proto" // ensure default proto codec is registered first
	"google.golang.org/protobuf/proto"
)

// Hub is an in-process gRPC streaming broadcaster: subscribers open a
// server-streaming stash.Updates/Subscribe call and receive a [ReadyEvent]
// for every published event matching their topic. It uses [grpc.ServiceDesc]
// registration so that no protobuf code generation is required.
//
// Because the wire types are plain Go structs (not generated protobuf
// messages), the package registers a thin codec wrapper that JSON-encodes hub
// types while delegating all other messages to the standard proto codec.
type Hub struct {
	log zerolog.Logger

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

type subscriber struct {
	topic string // "" subscribes to every topic
	ch    chan ReadyEvent
}

// NewHub creates an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:  log,
		subs: make(map[*subscriber]struct{}),
	}
}

// SubscribeRequest opens a subscription. An empty Topic receives every event.
type SubscribeRequest struct {
	Topic string `json:"topic"`
}

// ReadyEvent is the wire form of a published [Event].
type ReadyEvent struct {
	Topic          string `json:"topic"`
	Namespace      string `json:"namespace"`
	Key            string `json:"key"`
	ComputedAtUnix int64  `json:"computed_at_unix"`
}

// hubMsg is a marker interface satisfied by the hub's wire types.
type hubMsg interface {
	isHubMsg()
}

func (*SubscribeRequest) isHubMsg() {}
func (*ReadyEvent) isHubMsg()       {}

// Publish fans the event out to matching subscribers. A subscriber whose
// buffer is full misses the event; ready events are advisory and the next
// one supersedes it anyway.
func (h *Hub) Publish(_ context.Context, topic string, ev Event) {
	wire := ReadyEvent{
		Topic:          topic,
		Namespace:      ev.Namespace,
		Key:            ev.Key,
		ComputedAtUnix: ev.ComputedAt.Unix(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		if sub.topic != "" && sub.topic != topic {
			continue
		}
		select {
		case sub.ch <- wire:
		default:
			h.log.Debug().Str("topic", topic).Msg("broadcast: slow subscriber, event dropped")
		}
	}
}

// SubscriberCount reports the number of open subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) subscribe(topic string) *subscriber {
	sub := &subscriber{topic: topic, ch: make(chan ReadyEvent, 16)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) unsubscribe(sub *subscriber) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
}

// ServiceDesc is the grpc.ServiceDesc for the stash.Updates service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "stash.Updates",
	HandlerType: (*updatesServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Subscribe",
			Handler:       subscribeHandler,
			ServerStreams: true,
		},
	},
	Metadata: "stash/updates.proto",
}

// updatesServer is the server interface behind ServiceDesc; Hub implements it.
type updatesServer interface {
	subscribeStream(req *SubscribeRequest, stream grpc.ServerStream) error
}

func (h *Hub) subscribeStream(req *SubscribeRequest, stream grpc.ServerStream) error {
	sub := h.subscribe(req.Topic)
	defer h.unsubscribe(sub)

	ctx := stream.Context()
	for {
		select {
		case ev := <-sub.ch:
			if err := stream.SendMsg(&ev); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func subscribeHandler(srv any, stream grpc.ServerStream) error {
	req := new(SubscribeRequest)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(updatesServer).subscribeStream(req, stream)
}

// Register registers the hub's Updates service on the given gRPC server.
func Register(s *grpc.Server, h *Hub) {
	s.RegisterService(&ServiceDesc, h)
}

// ---------- codec wrapper ----------

func init() {
	// Replace the default proto codec with a thin wrapper that JSON-encodes
	// hub types and delegates all other (protobuf) messages to proto.Marshal.
	grpcEncoding.RegisterCodec(hubCodec{})
}

// hubCodec wraps the default proto codec. It handles SubscribeRequest and
// ReadyEvent via JSON, and delegates all other types to proto.Marshal/Unmarshal.
type hubCodec struct{}

func (hubCodec) Name() string { return "proto" }

func (hubCodec) Marshal(v any) ([]byte, error) {
	if _, ok := v.(hubMsg); ok {
		return json.Marshal(v)
	}
	if m, ok := v.(proto.Message); ok {
		return proto.Marshal(m)
	}
	return nil, fmt.Errorf("hub codec: unsupported message type %T", v)
}

func (hubCodec) Unmarshal(data []byte, v any) error {
	if _, ok := v.(hubMsg); ok {
		return json.Unmarshal(data, v)
	}
	if m, ok := v.(proto.Message); ok {
		return proto.Unmarshal(data, m)
	}
	return fmt.Errorf("hub codec: unsupported message type %T", v)
}
