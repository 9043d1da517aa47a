package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
)

// NATSPublisher mirrors audit events onto a NATS subject per object type,
// e.g. wlp.audit.roomrequest. It is an optional secondary sink.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

func NewNATSPublisher(url, subjectPrefix string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("wlp-audit"))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn, prefix: subjectPrefix}, nil
}

// Subject returns the subject an event is published on.
func (p *NATSPublisher) Subject(e Event) string {
	return SubjectFor(p.prefix, e)
}

func SubjectFor(prefix string, e Event) string {
	return prefix + "." + strings.ToLower(e.ObjType)
}

func (p *NATSPublisher) Append(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	return p.conn.Publish(p.Subject(e), payload)
}

func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}

// Fanout appends to every repository and joins the failures.
// The first repository is the system of record; later ones are mirrors.
type Fanout []Repository

func (f Fanout) Append(ctx context.Context, e Event) error {
	var errs []error
	for _, r := range f {
		if err := r.Append(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
