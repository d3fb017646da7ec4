package viewsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/ifcview/internal/engine/viewpoint"
	"github.com/Faultbox/ifcview/internal/logger"
)

// Client is a member of a hub room.
type Client struct {
	conn     *websocket.Conn
	name     string
	incoming chan viewpoint.Viewpoint
	outgoing chan Message

	closeOnce sync.Once
	closed    chan struct{}

	log *zap.Logger
}

// Dial joins the room at url, e.g. ws://127.0.0.1:7420/rooms/review.
// name identifies this client to other members.
func Dial(ctx context.Context, url, name string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	c := &Client{
		conn:     conn,
		name:     name,
		incoming: make(chan viewpoint.Viewpoint, 1),
		outgoing: make(chan Message, sendBacklog),
		closed:   make(chan struct{}),
		log:      logger.Named("sync"),
	}
	c.log.Info("joined room", zap.String("url", url))
	return c, nil
}

// Viewpoints delivers viewpoints published by other members. Only the
// newest undelivered viewpoint is kept.
func (c *Client) Viewpoints() <-chan viewpoint.Viewpoint {
	return c.incoming
}

// Publish queues vp for the other members.
func (c *Client) Publish(vp viewpoint.Viewpoint) error {
	msg := Message{Type: TypeViewpoint, From: c.name, Viewpoint: &vp}
	select {
	case <-c.closed:
		return ErrClosed
	case c.outgoing <- msg:
		return nil
	}
}

// Run pumps messages until ctx is done, the connection fails or Close is
// called. Messages published before Close are still sent. A clean shutdown
// returns nil.
func (c *Client) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.readPump() })
	g.Go(func() error { return c.writePump(ctx) })

	err := g.Wait()
	if errors.Is(err, ErrClosed) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *Client) readPump() error {
	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			select {
			case <-c.closed:
				return ErrClosed
			default:
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return ErrClosed
			}
			return fmt.Errorf("reading: %w", err)
		}
		if msg.Type != TypeViewpoint || msg.Viewpoint == nil {
			continue
		}
		c.log.Debug("viewpoint received", zap.String("from", msg.From))
		c.deliver(*msg.Viewpoint)
	}
}

// deliver replaces any undelivered viewpoint with vp.
func (c *Client) deliver(vp viewpoint.Viewpoint) {
	for {
		select {
		case c.incoming <- vp:
			return
		default:
		}
		select {
		case <-c.incoming:
		default:
		}
	}
}

func (c *Client) writePump(ctx context.Context) error {
	defer c.shutdown()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.closed:
			return c.flush()
		case msg := <-c.outgoing:
			if err := c.write(msg); err != nil {
				return err
			}
		}
	}
}

func (c *Client) write(msg Message) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("writing: %w", err)
	}
	return nil
}

// flush sends whatever is still queued.
func (c *Client) flush() error {
	for {
		select {
		case msg := <-c.outgoing:
			if err := c.write(msg); err != nil {
				return err
			}
		default:
			return ErrClosed
		}
	}
}

// shutdown says goodbye and closes the connection, which ends readPump.
func (c *Client) shutdown() {
	c.Close()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.conn.Close()
}

// Close stops Run. It is safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}
