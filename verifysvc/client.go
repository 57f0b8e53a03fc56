package verifysvc

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/cellnft/cell"
)

// Client calls a remote Verifier service.
type Client struct {
	cc     *grpc.ClientConn
	client VerifierClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int
}

func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return NewClient(cc), nil
}

// NewClient wraps an established connection.
func NewClient(cc *grpc.ClientConn) *Client {
	return &Client{cc: cc, client: NewVerifierClient(cc)}
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

func (c *Client) Verify(ctx context.Context, req Request) (*Response, error) {
	b, err := marshal(req)
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	reply, err := c.client.Verify(ctx, wrapperspb.Bytes(b))
	if err != nil {
		return nil, err
	}
	var resp Response
	if err := unmarshal(reply.GetValue(), &resp); err != nil {
		return nil, fmt.Errorf("verifysvc: decode response: %w", err)
	}
	return &resp, nil
}

func (c *Client) Classify(ctx context.Context, s *cell.Snapshot, token cell.Script) (string, error) {
	snap, err := s.MarshalCBOR()
	if err != nil {
		return "", err
	}
	tok, err := cell.MarshalScript(token)
	if err != nil {
		return "", err
	}
	b, err := marshal(ClassifyRequest{Snapshot: snap, Token: tok})
	if err != nil {
		return "", err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	reply, err := c.client.Classify(ctx, wrapperspb.Bytes(b))
	if err != nil {
		return "", err
	}
	return reply.GetValue(), nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.Timeout)
}
