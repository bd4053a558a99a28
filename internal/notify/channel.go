// Package notify implements the client side of the storefront's server-push
// notification stream.
package notify

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/storefront-client/internal/model"
	"github.com/fairyhunter13/storefront-client/internal/obs"
)

// State identifies the lifecycle phase of a Channel.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateStreaming
	StateClosed
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Channel wraps one persistent event-stream connection and turns its frames
// into a lazy sequence of notification records. A Channel never reconnects:
// a stream error or Close terminates it for good, and resuming requires
// opening a fresh Channel. That keeps the reopen decision with the caller.
type Channel struct {
	state  atomic.Int32
	cancel context.CancelFunc
	body   io.ReadCloser

	records chan model.NotificationRecord
	closing chan struct{}
	done    chan struct{}

	closeOnce   sync.Once
	releaseOnce sync.Once
}

// client carries no timeout: the stream is long-lived and its only teardown
// paths are Close, context cancellation, and a transport error.
var client = &http.Client{}

// Open establishes the stream connection to endpoint and starts delivering
// records. Connecting is the blocking part; after Open returns, frames are
// read lazily, one at a time, as the caller consumes Records. Canceling ctx
// tears the stream down the same way Close does.
func Open(ctx context.Context, endpoint string) (*Channel, error) {
	c := &Channel{
		records: make(chan model.NotificationRecord),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
	}
	c.state.Store(int32(StateConnecting))

	rctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	req, err := http.NewRequestWithContext(rctx, http.MethodGet, endpoint, nil)
	if err != nil {
		cancel()
		c.state.Store(int32(StateClosed))
		return nil, fmt.Errorf("notify: open %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := client.Do(req)
	if err != nil {
		cancel()
		c.state.Store(int32(StateClosed))
		return nil, fmt.Errorf("notify: open %s: %w", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		c.state.Store(int32(StateClosed))
		return nil, fmt.Errorf("notify: open %s: status %d", endpoint, resp.StatusCode)
	}
	c.body = resp.Body
	c.state.Store(int32(StateStreaming))
	obs.Logger.Info("notify_stream_open", "endpoint", endpoint)
	go c.read()
	return c, nil
}

// Records returns the record sequence. It is closed when the stream
// terminates, whether by Close or by a transport error; the caller decides
// whether to open a new Channel after that.
func (c *Channel) Records() <-chan model.NotificationRecord { return c.records }

// State reports the current lifecycle phase.
func (c *Channel) State() State { return State(c.state.Load()) }

// Close tears the channel down. It is safe in any state and any number of
// times; the underlying connection is released exactly once, synchronously,
// before Close returns, and the reader goroutine has exited by then.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		c.state.Store(int32(StateClosed))
		close(c.closing)
		c.release()
	})
	<-c.done
}

// release cancels the request and closes the response body. Guarded so that
// the Close path and the reader's termination path race safely.
func (c *Channel) release() {
	c.releaseOnce.Do(func() {
		c.cancel()
		if c.body != nil {
			_ = c.body.Close()
		}
	})
}

// read consumes the stream frame by frame. Each dispatched record is handed
// to the consumer before the next frame is parsed, so delivery is in
// arrival order with no buffering beyond the connection itself.
func (c *Channel) read() {
	defer close(c.done)
	defer close(c.records)
	defer c.release()

	sc := bufio.NewScanner(c.body)
	sc.Buffer(make([]byte, 0, 16*1024), 1024*1024)
	var data []string
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			if len(data) > 0 {
				payload := strings.Join(data, "\n")
				data = data[:0]
				if !c.dispatch(payload) {
					return
				}
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue // comment frame, typically a keep-alive
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		if field == "data" {
			data = append(data, value)
		}
		// event, id and retry fields carry no meaning for this client.
	}
	if err := sc.Err(); err != nil && c.State() != StateClosed {
		// Fail fast: terminate the sequence and release the connection.
		obs.Logger.Error("notify_stream_error", "error", err)
	}
	c.state.Store(int32(StateClosed))
}

// dispatch decodes one frame payload and delivers it. Malformed payloads
// are dropped and logged without terminating the stream. It returns false
// when the channel is closing and no more frames should be read.
func (c *Channel) dispatch(payload string) bool {
	if !json.Valid([]byte(payload)) {
		obs.Logger.Warn("notify_frame_dropped", "reason", "invalid_json", "payload", payload)
		return true
	}
	rec := model.NotificationRecord{
		Data:       json.RawMessage(payload),
		ReceivedAt: time.Now(),
	}
	select {
	case c.records <- rec:
		return true
	case <-c.closing:
		return false
	}
}
