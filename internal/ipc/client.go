package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"

	"substream/internal/jobs"
)

// Client provides RPC access to a running daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the daemon socket.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	return &Client{
		conn:   conn,
		client: rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn)),
	}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Status retrieves the daemon snapshot.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Substream.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Enqueue adds a job.
func (c *Client) Enqueue(kind jobs.Kind, source, output string) (*EnqueueResponse, error) {
	var resp EnqueueResponse
	req := EnqueueRequest{Kind: kind, SourcePath: source, OutputPath: output}
	if err := c.client.Call("Substream.Enqueue", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// List fetches all known jobs.
func (c *Client) List() (*ListResponse, error) {
	var resp ListResponse
	if err := c.client.Call("Substream.List", ListRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Cancel cancels one job.
func (c *Client) Cancel(id string) (*CancelResponse, error) {
	var resp CancelResponse
	if err := c.client.Call("Substream.Cancel", CancelRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CancelAll cancels everything and returns the affected count.
func (c *Client) CancelAll() (*CancelAllResponse, error) {
	var resp CancelAllResponse
	if err := c.client.Call("Substream.CancelAll", CancelAllRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Events polls events newer than after.
func (c *Client) Events(after int64) (*EventsResponse, error) {
	var resp EventsResponse
	if err := c.client.Call("Substream.Events", EventsRequest{After: after}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Shutdown asks the daemon to exit.
func (c *Client) Shutdown() (*ShutdownResponse, error) {
	var resp ShutdownResponse
	if err := c.client.Call("Substream.Shutdown", ShutdownRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
