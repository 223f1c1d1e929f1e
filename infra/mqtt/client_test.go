package mqtt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremon "github.com/kilianp07/invsched/core/monitoring"
	coremqtt "github.com/kilianp07/invsched/core/mqtt"
)

type mockToken struct{ err error }

func (t *mockToken) Wait() bool                     { return true }
func (t *mockToken) WaitTimeout(time.Duration) bool { return true }
func (t *mockToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *mockToken) Error() error { return t.err }

type mockClient struct {
	mu           sync.Mutex
	publishErr   error
	publishes    int
	qos          []byte
	subscribed   []string
	disconnected bool
}

func (m *mockClient) IsConnected() bool   { return true }
func (m *mockClient) Connect() paho.Token { return &mockToken{} }
func (m *mockClient) Disconnect(uint)     { m.disconnected = true }
func (m *mockClient) Publish(_ string, qos byte, _ bool, _ interface{}) paho.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishes++
	m.qos = append(m.qos, qos)
	return &mockToken{err: m.publishErr}
}
func (m *mockClient) Subscribe(topic string, qos byte, _ paho.MessageHandler) paho.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribed = append(m.subscribed, topic)
	m.qos = append(m.qos, qos)
	return &mockToken{}
}

func withMockClient(t *testing.T, mc *mockClient) {
	t.Helper()
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return mc }
	t.Cleanup(func() { newMQTTClient = orig })
}

// generateCert writes a self-signed certificate usable as cert and CA.
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	require.NoError(t, err)
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")
	caFile = filepath.Join(dir, "ca.pem")
	require.NoError(t, os.WriteFile(certFile, certPEM, 0o644))
	require.NoError(t, os.WriteFile(keyFile, keyPEM, 0o600))
	require.NoError(t, os.WriteFile(caFile, certPEM, 0o644))
	return
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	require.NoError(t, err)
	assert.Len(t, tlsCfg.Certificates, 1)
	assert.NotNil(t, tlsCfg.RootCAs)

	_, err = Config{UseTLS: true}.LoadTLSConfig()
	assert.Error(t, err)

	_, err = Config{ClientCert: "missing", ClientKey: "missing", CABundle: ca}.LoadTLSConfig()
	assert.Error(t, err)
}

func TestNewClientOptions(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", Username: "user", Password: "pass", LWTTopic: "invsched/status", LWTPayload: "offline", QoS: 1})
	require.NoError(t, err)
	assert.Equal(t, "user", opts.Username)
	assert.Equal(t, "pass", opts.Password)
	assert.Contains(t, opts.ClientID, "invsched-")
	assert.True(t, opts.WillEnabled)
	assert.Equal(t, "invsched/status", opts.WillTopic)

	opts, err = NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "fixed"})
	require.NoError(t, err)
	assert.Equal(t, "fixed", opts.ClientID)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{Broker: "tcp://b:1883"}.Validate())
	assert.Error(t, Config{QoS: 3}.Validate())
	assert.Error(t, Config{UseTLS: true}.Validate())
	assert.True(t, Config{Broker: "x"}.Enabled())
	assert.False(t, Config{}.Enabled())
}

func TestPublishUsesQoS(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	c, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", QoS: 1})
	require.NoError(t, err)
	require.NoError(t, c.Publish("invsched/results/1", []byte("{}")))
	require.NoError(t, c.Subscribe("invsched/requests", func(coremqtt.Message) {}))
	assert.Equal(t, []byte{1, 1}, mc.qos)
	assert.Equal(t, []string{"invsched/requests"}, mc.subscribed)

	require.NoError(t, c.Close())
	assert.True(t, mc.disconnected)
	assert.ErrorIs(t, c.Publish("t", nil), coremqtt.ErrClosed)
	assert.ErrorIs(t, c.Subscribe("t", nil), coremqtt.ErrClosed)
}

type recordMonitor struct {
	mu   sync.Mutex
	errs []error
	tags []map[string]string
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
	r.tags = append(r.tags, tags)
}
func (r *recordMonitor) Recover(any)         {}
func (r *recordMonitor) Flush(time.Duration) {}

func TestPublishRetriesThenReports(t *testing.T) {
	mc := &mockClient{publishErr: errors.New("broker down")}
	withMockClient(t, mc)
	rec := &recordMonitor{}
	coremon.Init(rec)
	t.Cleanup(coremon.Reset)

	c, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", MaxRetries: 2, BackoffMS: 1})
	require.NoError(t, err)
	err = c.Publish("invsched/results/9", []byte("x"))
	require.Error(t, err)
	assert.Equal(t, 3, mc.publishes)
	require.Len(t, rec.tags, 1)
	assert.Equal(t, "mqtt", rec.tags[0]["module"])
	assert.Equal(t, "invsched/results/9", rec.tags[0]["topic"])
}
