package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"freight-app/shipment"
)

// EventKind discriminates the two things the push stream can tell us.
type EventKind int

const (
	EventUpserted EventKind = iota
	EventDeleted
)

// StreamEvent is one decoded push message. Kind says which of the two
// payload fields is meaningful.
type StreamEvent struct {
	Kind     EventKind
	Shipment shipment.Raw // EventUpserted
	ID       string       // EventDeleted
}

// streamEnvelope is the wire shape of a push message.
type streamEnvelope struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// StreamShipments opens the live shipment feed and returns a channel of
// decoded events. The stream authenticates with the current token passed as
// a query parameter, per the endpoint's contract. Messages on other channels
// and malformed payloads are dropped without closing the connection. The
// channel closes when ctx is cancelled or the connection drops; the caller
// owns the reconnect policy, and must cancel and resubscribe whenever the
// session token changes.
func (c *Client) StreamShipments(ctx context.Context, logger *zap.Logger) (<-chan StreamEvent, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	streamURL := c.baseURL + "/stream/shipments?token=" + url.QueryEscape(c.Token())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	// The default client has a request timeout that would kill a
	// long-lived stream, so the stream uses the transport directly.
	httpClient := &http.Client{Transport: c.http.Transport}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("stream rejected with status %d", resp.StatusCode)
	}

	events := make(chan StreamEvent, 16)
	go func() {
		defer close(events)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		var data strings.Builder

		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				if data.Len() > 0 {
					dispatch(data.String(), events, ctx, logger)
					data.Reset()
				}
				continue
			}
			if strings.HasPrefix(line, ":") {
				continue // keepalive comment
			}
			if value, ok := strings.CutPrefix(line, "data:"); ok {
				data.WriteString(strings.TrimPrefix(value, " "))
			}
			// "event:"/"id:" framing lines carry nothing we need; the
			// envelope inside data has its own event field.
		}
		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			logger.Warn("shipment stream closed", zap.Error(err))
		}
	}()
	return events, nil
}

func dispatch(data string, events chan<- StreamEvent, ctx context.Context, logger *zap.Logger) {
	var env streamEnvelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		logger.Debug("dropping malformed stream payload", zap.Error(err))
		return
	}
	if env.Channel != "shipments" || len(env.Payload) == 0 {
		return
	}

	var ev StreamEvent
	if env.Event == "deleted" {
		var payload struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(env.Payload, &payload); err != nil || payload.ID == "" {
			logger.Debug("dropping malformed delete payload", zap.Error(err))
			return
		}
		ev = StreamEvent{Kind: EventDeleted, ID: payload.ID}
	} else {
		var raw shipment.Raw
		if err := json.Unmarshal(env.Payload, &raw); err != nil || raw.ID == "" {
			logger.Debug("dropping malformed shipment payload", zap.Error(err))
			return
		}
		ev = StreamEvent{Kind: EventUpserted, Shipment: raw}
	}

	select {
	case events <- ev:
	case <-ctx.Done():
	}
}
