package relay

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"backend/internal/logger"
	"backend/internal/types"
)

var (
	ErrUnknownDestination = errors.New("no endpoint for destination chain")
	ErrUnknownMessage     = errors.New("unknown message id")
)

type endpoint struct {
	chain    types.ChainID
	receiver Receiver
}

// Loopback is an in-process relay joining bridge instances on different
// chain ids. It assigns message ids, stamps the sender into the envelope and
// keeps an outbox so deliveries can be replayed, which models the
// at-least-once transport the bridges must tolerate.
type Loopback struct {
	identity types.Address

	mutex     sync.Mutex
	endpoints map[types.ChainID]endpoint
	fees      map[types.ChainID]*big.Int
	nextID    uint64
	outbox    map[string]delivery
}

type delivery struct {
	destination types.ChainID
	message     Message
}

func NewLoopback(identity types.Address) *Loopback {
	return &Loopback{
		identity:  identity,
		endpoints: map[types.ChainID]endpoint{},
		fees:      map[types.ChainID]*big.Int{},
		outbox:    map[string]delivery{},
	}
}

// Identity is the caller address the loopback uses when invoking receivers.
func (l *Loopback) Identity() types.Address {
	return l.identity
}

// Connect registers the receiver serving a chain id.
func (l *Loopback) Connect(chain types.ChainID, receiver Receiver) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.endpoints[chain] = endpoint{chain: chain, receiver: receiver}
}

// SetFee fixes the delivery fee quoted for a destination chain.
func (l *Loopback) SetFee(chain types.ChainID, fee *big.Int) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.fees[chain] = new(big.Int).Set(fee)
}

func (l *Loopback) QuoteFee(destination types.ChainID, payload []byte) (*big.Int, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if _, ok := l.endpoints[destination]; !ok {
		return nil, ErrUnknownDestination
	}

	if fee, ok := l.fees[destination]; ok {
		return new(big.Int).Set(fee), nil
	}
	return big.NewInt(0), nil
}

// Send assigns a message id and delivers to the destination endpoint. The
// source chain stamped into the envelope is the chain of the sending
// endpoint; senders unknown to the relay are stamped with chain 0.
func (l *Loopback) Send(destination types.ChainID, sender types.Address, payload []byte, attachedValue *big.Int) (string, error) {
	l.mutex.Lock()

	target, ok := l.endpoints[destination]
	if !ok {
		l.mutex.Unlock()
		return "", ErrUnknownDestination
	}

	l.nextID++
	message := Message{
		ID:          fmt.Sprintf("msg-%d", l.nextID),
		SourceChain: l.sourceChainOf(sender),
		Sender:      sender,
		Payload:     append([]byte(nil), payload...),
	}
	l.outbox[message.ID] = delivery{destination: destination, message: message}
	l.mutex.Unlock()

	logger.Debug("relay: delivering message",
		zap.String("message id", message.ID),
		zap.Uint64("destination", uint64(destination)),
	)

	if err := target.receiver.OnMessageReceived(l.identity, message); err != nil {
		// Delivery rejections are the receiver's business; the message
		// stays in the outbox for redelivery.
		logger.Warn("relay: delivery rejected", zap.String("message id", message.ID), zap.Error(err))
	}

	return message.ID, nil
}

func (l *Loopback) sourceChainOf(sender types.Address) types.ChainID {
	for _, ep := range l.endpoints {
		if bridged, ok := ep.receiver.(interface{ Account() types.Address }); ok && bridged.Account() == sender {
			return ep.chain
		}
	}
	return 0
}

// Redeliver replays a previously sent message, modelling duplicate delivery.
func (l *Loopback) Redeliver(messageID string) error {
	l.mutex.Lock()
	stored, ok := l.outbox[messageID]
	target, found := l.endpoints[stored.destination]
	l.mutex.Unlock()

	if !ok {
		return ErrUnknownMessage
	}
	if !found {
		return ErrUnknownDestination
	}

	return target.receiver.OnMessageReceived(l.identity, stored.message)
}
