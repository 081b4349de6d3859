package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sweeney/drpiro/internal/launcher"
)

// bufferCapacity is how many messages are kept while the broker is unreachable.
const bufferCapacity = 100

// RealPublisher publishes to an actual MQTT broker. Messages published while
// disconnected are buffered and replayed on (re)connect.
type RealPublisher struct {
	client paho.Client

	mu  sync.Mutex
	out *outbox
}

// NewRealPublisher creates a publisher for the given broker. It does not fail
// if the broker is unreachable at startup; the client keeps retrying.
func NewRealPublisher(broker, clientID string) *RealPublisher {
	p := &RealPublisher{out: newOutbox(bufferCapacity)}

	will, _ := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "OFFLINE"})

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetWill(TopicSystem, string(will), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		log.Printf("mqtt: broker %s not reachable yet, buffering", broker)
	} else if err := token.Error(); err != nil {
		log.Printf("mqtt: connect to broker: %v", err)
	}
	return p
}

// Publish sends a launcher event at QoS 0.
func (p *RealPublisher) Publish(event launcher.Event) error {
	msg, err := launcherMessage(event)
	if err != nil {
		return err
	}
	return p.publish(msg)
}

// PublishSystem sends a lifecycle event at QoS 1.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	msg, err := systemMessage(event)
	if err != nil {
		return err
	}
	return p.publish(msg)
}

// IsConnected reports whether the client currently has an open connection.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}

func (p *RealPublisher) publish(msg bufferedMsg) error {
	if !p.client.IsConnectionOpen() {
		p.mu.Lock()
		p.out.push(msg)
		p.mu.Unlock()
		return nil
	}

	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(5 * time.Second) {
		p.mu.Lock()
		p.out.push(msg)
		p.mu.Unlock()
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// onConnect replays messages buffered while disconnected.
func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	msgs := p.out.drain()
	p.mu.Unlock()

	if len(msgs) == 0 {
		log.Printf("mqtt: connected")
		return
	}
	log.Printf("mqtt: connected, replaying %d buffered messages", len(msgs))
	for _, m := range msgs {
		token := c.Publish(m.topic, m.qos, m.retained, m.payload)
		if !token.WaitTimeout(5*time.Second) || token.Error() != nil {
			log.Printf("mqtt: replay to %s failed: %v", m.topic, token.Error())
		}
	}
}
