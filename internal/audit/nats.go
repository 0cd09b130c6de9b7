package audit

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/thoughtstream-ai/reasoning-platform/pkg/logger"
)

const (
	// StreamName is the JetStream stream holding all audit records.
	StreamName = "AUDIT"

	// SubjectPrefix is the prefix for all audit subjects.
	SubjectPrefix = "audit"

	publishTimeout = 5 * time.Second
)

// NATSConfig holds NATS connection configuration.
type NATSConfig struct {
	URL      string
	CAFile   string
	CertFile string
	KeyFile  string
	Token    string
}

// NATSSink publishes audit records to a JetStream stream with deletion
// and purging denied, giving the audit trail a durable append-only home.
type NATSSink struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	logger *logger.Logger
}

// NewNATSSink connects to NATS and ensures the audit stream exists.
func NewNATSSink(ctx context.Context, cfg NATSConfig, log *logger.Logger) (*NATSSink, error) {
	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	}

	if cfg.CAFile != "" && cfg.CertFile != "" && cfg.KeyFile != "" {
		tlsConfig, err := createTLSConfig(cfg.CAFile, cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
		opts = append(opts, nats.Secure(tlsConfig))
	}

	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	sink := &NATSSink{conn: nc, js: js, logger: log}
	if err := sink.ensureStream(ctx); err != nil {
		nc.Close()
		return nil, err
	}
	return sink, nil
}

func (s *NATSSink) ensureStream(ctx context.Context) error {
	if _, err := s.js.Stream(ctx, StreamName); err == nil {
		return nil
	}

	_, err := s.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      365 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		DenyDelete:  true,
		DenyPurge:   true,
		Description: "Append-only audit trail of streamed chat sessions",
	})
	if err != nil {
		return fmt.Errorf("failed to create audit stream: %w", err)
	}
	return nil
}

// Subject returns the JetStream subject for one record.
func Subject(rec Record) string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, rec.SessionID, rec.EventType)
}

// Append publishes one record.
func (s *NATSSink) Append(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if _, err := s.js.Publish(ctx, Subject(rec), data); err != nil {
		return fmt.Errorf("failed to publish audit record: %w", err)
	}
	return nil
}

// Close closes the NATS connection.
func (s *NATSSink) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	return nil
}

// IsConnected reports whether the underlying connection is up.
func (s *NATSSink) IsConnected() bool {
	return s.conn != nil && s.conn.IsConnected()
}

func createTLSConfig(caFile, certFile, keyFile string) (*tls.Config, error) {
	caCert, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}

	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("failed to parse CA certificate")
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load client cert: %w", err)
	}

	return &tls.Config{
		RootCAs:      caCertPool,
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
