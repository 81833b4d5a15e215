// Package mqttpub publishes key selection events to an MQTT broker. It
// implements deckhand.OutputPublisher.
package mqttpub

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	mqtt "github.com/soypat/natiu-mqtt"
)

var pubFlags, _ = mqtt.NewPublishFlags(mqtt.QoS0, false, false)

// Opts configures a Publisher.
type Opts struct {
	ClientID string
	Topic    string

	// Optional broker credentials. Password is only sent when Username is
	// set.
	Username string
	Password string

	// Timeout bounds the connect handshake and each publish (default: 5s).
	Timeout time.Duration
}

type buttonEvent struct {
	Key      int  `json:"key"`
	Selected bool `json:"selected"`
}

// Publisher is an MQTT-backed OutputPublisher. Safe for concurrent use.
type Publisher struct {
	conn    net.Conn
	client  *mqtt.Client
	topic   []byte
	timeout time.Duration

	mu  sync.Mutex
	pid uint16
}

// Dial connects to the broker at addr ("host:port") and completes the MQTT
// handshake.
func Dial(addr string, opts Opts) (*Publisher, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("mqttpub: dial %s: %w", addr, err)
	}

	client := mqtt.NewClient(mqtt.ClientConfig{
		Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, 4096)},
	})

	var varconn mqtt.VariablesConnect
	varconn.SetDefaultMQTT([]byte(opts.ClientID))
	if opts.Username != "" {
		varconn.Username = []byte(opts.Username)
		if opts.Password != "" {
			varconn.Password = []byte(opts.Password)
		}
	}

	conn.SetDeadline(time.Now().Add(timeout))
	if err := client.StartConnect(conn, &varconn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("mqttpub: connect %s: %w", addr, err)
	}
	for i := 0; i < 50 && !client.IsConnected(); i++ {
		time.Sleep(100 * time.Millisecond)
		client.HandleNext()
	}
	if !client.IsConnected() {
		conn.Close()
		return nil, fmt.Errorf("mqttpub: connect %s timed out: %v", addr, client.Err())
	}
	conn.SetDeadline(time.Time{})

	return &Publisher{
		conn:    conn,
		client:  client,
		topic:   []byte(opts.Topic),
		timeout: timeout,
	}, nil
}

// SendButtonSelected publishes one press or release transition as a JSON
// payload {"key": n, "selected": bool} at QoS0.
func (p *Publisher) SendButtonSelected(key int, selected bool) error {
	payload, err := json.Marshal(buttonEvent{Key: key, Selected: selected})
	if err != nil {
		return fmt.Errorf("mqttpub: marshal: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.pid++
	if p.pid == 0 {
		p.pid = 1
	}
	varPub := mqtt.VariablesPublish{
		TopicName:        p.topic,
		PacketIdentifier: p.pid,
	}

	p.conn.SetWriteDeadline(time.Now().Add(p.timeout))
	if err := p.client.PublishPayload(pubFlags, varPub, payload); err != nil {
		return fmt.Errorf("mqttpub: publish: %w", err)
	}
	return nil
}

// Close tears down the broker connection.
func (p *Publisher) Close() error {
	return p.conn.Close()
}
