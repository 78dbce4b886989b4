package mqtt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"testing"
	"time"

	"context"
	"encoding/json"
	"fmt"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/gridstatus/core/events"
	"github.com/kilianp07/gridstatus/core/model"
	"github.com/kilianp07/gridstatus/internal/eventbus"
)

// helper to generate self-signed cert
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = dir + "/cert.pem"
	keyFile = dir + "/key.pem"
	caFile = dir + "/ca.pem"
	if err := os.WriteFile(certFile, certPEM, 0644); err != nil {
		t.Fatalf("write cert: %v", err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0644); err != nil {
		t.Fatalf("write key: %v", err)
	}
	if err := os.WriteFile(caFile, certPEM, 0644); err != nil {
		t.Fatalf("write ca: %v", err)
	}
	return
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	if err != nil {
		t.Fatalf("load tls: %v", err)
	}
	if len(tlsCfg.Certificates) == 0 {
		t.Fatalf("no certs loaded")
	}
	if tlsCfg.RootCAs == nil {
		t.Fatalf("no root CAs")
	}
}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "u" || opts.Password != "p" {
		t.Fatalf("auth not set")
	}
}

func sampleEvent() events.FetchEvent {
	t0 := time.Date(2023, 7, 8, 15, 0, 0, 0, time.UTC)
	obs := []model.Observation{
		{ISO: "miso", Dataset: model.DatasetLMP, Market: "REAL_TIME_5_MIN", Location: "ILLINOIS.HUB", IntervalStart: t0, Fields: map[string]float64{"lmp": 30}},
		{ISO: "miso", Dataset: model.DatasetLMP, Market: "REAL_TIME_5_MIN", Location: "ILLINOIS.HUB", IntervalStart: t0.Add(5 * time.Minute), Fields: map[string]float64{"lmp": 31}},
		{ISO: "miso", Dataset: model.DatasetLMP, Market: "REAL_TIME_5_MIN", Location: "MINN.HUB", IntervalStart: t0, Fields: map[string]float64{"lmp": 22}},
	}
	return events.FetchEvent{ISO: "miso", Dataset: model.DatasetLMP, Records: 3, Observations: obs}
}

func withMock(mc *mockClient) func() {
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	return func() { newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) } }
}

func TestTopic(t *testing.T) {
	if got := Topic("gs", "miso", model.DatasetLoad, ""); got != "gs/miso/load" {
		t.Fatalf("unexpected topic %s", got)
	}
	if got := Topic("gs", "miso", model.DatasetLMP, "A/B+C#"); got != "gs/miso/lmp/A_B_C_" {
		t.Fatalf("unexpected topic %s", got)
	}
}

func TestPublishLatestPerSeries(t *testing.T) {
	mc := &mockClient{}
	defer withMock(mc)()
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", ClientID: "id", TopicPrefix: "gs/", QoS: 1, Retain: true})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if err := cli.PublishFetch(sampleEvent()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(mc.published) != 2 {
		t.Fatalf("expected 2 publishes, got %d", len(mc.published))
	}
	first := mc.published[0]
	if first.topic != "gs/miso/lmp/ILLINOIS.HUB" || first.qos != 1 || !first.retained {
		t.Fatalf("unexpected publish %+v", first)
	}
	var o model.Observation
	if err := json.Unmarshal(first.payload, &o); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if o.Fields["lmp"] != 31 {
		t.Fatalf("expected latest observation, got %+v", o)
	}
	if mc.published[1].topic != "gs/miso/lmp/MINN.HUB" {
		t.Fatalf("unexpected topic %s", mc.published[1].topic)
	}
}

func TestPublishSkipsFailedFetch(t *testing.T) {
	mc := &mockClient{}
	defer withMock(mc)()
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883"})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	ev := sampleEvent()
	ev.Error = "boom"
	if err := cli.PublishFetch(ev); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(mc.published) != 0 {
		t.Fatalf("failed fetch must not be published")
	}
}

func TestLWTConfigured(t *testing.T) {
	mc := &mockClient{}
	defer withMock(mc)()
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", LWTTopic: "lwt", LWTPayload: "bye", LWTQoS: 1}
	cli, err := NewPahoClient(cfg)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if !mc.opts.WillEnabled {
		t.Fatalf("will not enabled")
	}
	if mc.opts.WillTopic != "lwt" || string(mc.opts.WillPayload) != "bye" {
		t.Fatalf("will options incorrect")
	}
	cli.Disconnect()
	if len(mc.published) != 0 {
		t.Fatalf("unexpected publish on disconnect")
	}
}

func TestRetryLogic(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("net fail"), nil}}
	defer withMock(mc)()
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", MaxRetries: 1, BackoffMS: 1}
	cli, err := NewPahoClient(cfg)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	ev := sampleEvent()
	ev.Observations = ev.Observations[:1]
	if err := cli.PublishFetch(ev); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(mc.published) != 2 {
		t.Fatalf("expected retries")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{}).Validate(); err != nil {
		t.Fatalf("disabled config must be valid: %v", err)
	}
	if err := (Config{Enabled: true}).Validate(); err == nil {
		t.Fatalf("expected missing broker error")
	}
	if err := (Config{Enabled: true, Broker: "tcp://b:1883", QoS: 3}).Validate(); err == nil {
		t.Fatalf("expected qos error")
	}
	var c Config
	c.SetDefaults()
	if c.TopicPrefix != "gridstatus" || c.ClientID == "" || c.MaxRetries != 3 {
		t.Fatalf("defaults not applied: %+v", c)
	}
}

func TestMockPublisherAndBus(t *testing.T) {
	bus := eventbus.NewTyped[events.FetchEvent]()
	pub := NewMockPublisher("gs")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartPublisher(ctx, bus, pub)

	bus.Publish(sampleEvent())
	deadline := time.Now().Add(time.Second)
	for pub.Topics() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if pub.Topics() != 2 {
		t.Fatalf("expected 2 topics, got %d", pub.Topics())
	}
	bus.Close()
}

// mockClient implements pahoClient for tests
type mockClient struct {
	opts       *paho.ClientOptions
	subscribed []struct {
		topic string
		qos   byte
	}
	published   []publishRecord
	publishErrs []error
}

func (m *mockClient) IsConnected() bool { return true }
func (m *mockClient) Connect() paho.Token {
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(m)
	}
	return &dummyToken{}
}
func (m *mockClient) Disconnect(uint) {}
type publishRecord struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	b, _ := payload.([]byte)
	m.published = append(m.published, publishRecord{topic, qos, retained, b})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}
func (m *mockClient) Subscribe(topic string, qos byte, _ paho.MessageHandler) paho.Token {
	m.subscribed = append(m.subscribed, struct {
		topic string
		qos   byte
	}{topic, qos})
	return &dummyToken{}
}
func (m *mockClient) SubscribeMultiple(map[string]byte, paho.MessageHandler) paho.Token {
	return &dummyToken{}
}
func (m *mockClient) Unsubscribe(...string) paho.Token        { return &dummyToken{} }
func (m *mockClient) AddRoute(string, paho.MessageHandler)    {}
func (m *mockClient) OptionsReader() paho.ClientOptionsReader { return paho.ClientOptionsReader{} }
func (m *mockClient) IsConnectionOpen() bool                  { return true }

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }
