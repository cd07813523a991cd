package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"filterbridge/internal/protocol"
)

const (
	dialTimeout     = 2 * time.Second
	clientReadLimit = 32 << 20
	frameBuffer     = 256
)

// ErrRemote reports a reply frame carrying an error.
var ErrRemote = errors.New("daemon reported an error")

// Client is a scripted UI window connected to the daemon.
type Client struct {
	conn *websocket.Conn
	http *http.Client

	mu      sync.Mutex
	pending map[string]chan protocol.Frame
	err     error

	frames  chan protocol.Frame
	done    chan struct{}
	dropped int
}

func unixHTTPClient(path string) *http.Client {
	dialer := &net.Dialer{Timeout: dialTimeout}
	return &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				return dialer.DialContext(ctx, "unix", path)
			},
		},
	}
}

// Dial connects a window to the daemon socket at path.
func Dial(ctx context.Context, path string) (*Client, error) {
	hc := unixHTTPClient(path)
	conn, _, err := websocket.Dial(ctx, "ws://unix"+RouteUI, &websocket.DialOptions{HTTPClient: hc})
	if err != nil {
		return nil, fmt.Errorf("dial websocket: %w", err)
	}
	conn.SetReadLimit(clientReadLimit)

	c := &Client{
		conn:    conn,
		http:    hc,
		pending: make(map[string]chan protocol.Frame),
		frames:  make(chan protocol.Frame, frameBuffer),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// FetchStatus queries GET /status on the daemon socket without opening a
// window.
func FetchStatus(ctx context.Context, path string) (*StatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://unix"+RouteStatus, nil)
	if err != nil {
		return nil, err
	}
	resp, err := unixHTTPClient(path).Do(req)
	if err != nil {
		return nil, fmt.Errorf("request status: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request status: unexpected %s", resp.Status)
	}
	var status StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return &status, nil
}

// Close disconnects the window.
func (c *Client) Close() error {
	err := c.conn.Close(websocket.StatusNormalClosure, "")
	<-c.done
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// SendRaw writes raw envelope text as-is.
func (c *Client) SendRaw(ctx context.Context, data []byte) error {
	if err := c.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("write envelope: %w", err)
	}
	return nil
}

// Send writes one envelope. Use it for commands that do not reply.
func (c *Client) Send(ctx context.Context, tag protocol.Tag, requestID string, payload any) error {
	data, err := protocol.NewEnvelope(tag, requestID, payload)
	if err != nil {
		return err
	}
	return c.SendRaw(ctx, data)
}

// Call sends a command that replies and waits for the frame carrying its
// request id. A frame with an error set is returned along with ErrRemote.
func (c *Client) Call(ctx context.Context, tag protocol.Tag, payload any) (protocol.Frame, error) {
	if tag.Reply() == protocol.ReplyNone {
		return protocol.Frame{}, fmt.Errorf("command %s does not reply", tag)
	}
	requestID := uuid.NewString()
	ch := make(chan protocol.Frame, 1)

	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return protocol.Frame{}, err
	}
	c.pending[requestID] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, requestID)
		c.mu.Unlock()
	}()

	if err := c.Send(ctx, tag, requestID, payload); err != nil {
		return protocol.Frame{}, err
	}

	select {
	case frame := <-ch:
		if frame.Error != "" {
			return frame, fmt.Errorf("%w: %s", ErrRemote, frame.Error)
		}
		return frame, nil
	case <-c.done:
		return protocol.Frame{}, c.readErr()
	case <-ctx.Done():
		return protocol.Frame{}, ctx.Err()
	}
}

// Next returns the next frame not claimed by a Call, typically an event push.
func (c *Client) Next(ctx context.Context) (protocol.Frame, error) {
	select {
	case frame, ok := <-c.frames:
		if !ok {
			return protocol.Frame{}, c.readErr()
		}
		return frame, nil
	case <-ctx.Done():
		return protocol.Frame{}, ctx.Err()
	}
}

// Dropped reports frames discarded because nobody was reading Next.
func (c *Client) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

func (c *Client) readLoop() {
	defer close(c.done)
	defer close(c.frames)
	for {
		_, data, err := c.conn.Read(context.Background())
		if err != nil {
			c.mu.Lock()
			c.err = fmt.Errorf("connection closed: %w", err)
			c.mu.Unlock()
			return
		}
		var frame protocol.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[frame.RequestID]
		if ok && frame.RequestID != "" && frame.Kind != protocol.FramePush {
			delete(c.pending, frame.RequestID)
			c.mu.Unlock()
			ch <- frame
			continue
		}
		c.mu.Unlock()

		select {
		case c.frames <- frame:
		default:
			c.mu.Lock()
			c.dropped++
			c.mu.Unlock()
		}
	}
}

func (c *Client) readErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	return errors.New("connection closed")
}
