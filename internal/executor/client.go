package executor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/multimodal-planner/internal/device"
	"github.com/danielpatrickdp/multimodal-planner/internal/geometry"
	"github.com/danielpatrickdp/multimodal-planner/internal/modality"
)

// #region client-struct
// Client sends device commands to the robot bridge over gRPC. It
// implements device.Bridge.
type Client struct {
	conn   *grpc.ClientConn
	invoke grpc.ClientConnInterface
	retry  *RetryPolicy
	log    *zap.Logger
}

// #endregion client-struct

// #region constructor

// NewClient connects to the bridge at cfg.Addr.
func NewClient(cfg ClientConfig, logger *zap.Logger) (*Client, error) {
	conn, err := grpc.NewClient(cfg.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", cfg.Addr, err)
	}
	c := NewClientWithConn(conn, cfg, logger)
	c.conn = conn
	return c, nil
}

// NewClientWithConn creates a Client over an existing connection. Close
// leaves conn open.
func NewClientWithConn(conn grpc.ClientConnInterface, cfg ClientConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{invoke: conn, retry: NewRetryPolicy(cfg), log: logger.Named("executor")}
}

// #endregion constructor

// #region close

// Close shuts down the gRPC connection if the client owns it.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region send

// Send issues cmd, retrying transient failures with escalating timeouts.
func (c *Client) Send(ctx context.Context, cmd device.Command) error {
	req, err := EncodeCommand(cmd)
	if err != nil {
		return err
	}

	var attempts []Attempt
	timeout := c.retry.FirstTimeout()
	for {
		err := c.call(ctx, req, timeout)
		if err == nil {
			return nil
		}
		attempts = append(attempts, Attempt{Code: codeOf(err), Timeout: timeout, Err: err})
		if ctx.Err() != nil {
			return fmt.Errorf("execute %s: %w", cmd.Device, ctx.Err())
		}

		retry, wait, next := c.retry.ShouldRetry(attempts)
		if !retry {
			return fmt.Errorf("execute %s after %d attempt(s): %w", cmd.Device, len(attempts), err)
		}
		c.log.Warn("bridge call failed, retrying",
			zap.String("device", cmd.Device),
			zap.Int("attempt", len(attempts)),
			zap.Stringer("code", attempts[len(attempts)-1].Code),
			zap.Duration("next_timeout", next),
		)
		select {
		case <-ctx.Done():
			return fmt.Errorf("execute %s: %w", cmd.Device, ctx.Err())
		case <-time.After(wait):
		}
		timeout = next
	}
}

func (c *Client) call(ctx context.Context, req *structpb.Struct, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	resp := new(structpb.Struct)
	if err := c.invoke.Invoke(ctx, ExecuteMethod, req, resp); err != nil {
		return err
	}
	fields := resp.GetFields()
	if fields["ok"].GetBoolValue() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrRejected, fields["error"].GetStringValue())
}

// #endregion send

// #region codec

// EncodeCommand converts a command to its wire form. Positions become
// {x,y,z} objects; other non-scalar content is sent as its string form.
func EncodeCommand(cmd device.Command) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(map[string]any{
		"device":   cmd.Device,
		"modality": string(cmd.Modality),
		"content":  contentValue(cmd.Content),
	})
	if err != nil {
		return nil, fmt.Errorf("encode command for %s: %w", cmd.Device, err)
	}
	return s, nil
}

// DecodeCommand is the inverse of EncodeCommand. Position content comes
// back as geometry.Position.
func DecodeCommand(s *structpb.Struct) device.Command {
	f := s.GetFields()
	cmd := device.Command{
		Device:   f["device"].GetStringValue(),
		Modality: modality.ID(f["modality"].GetStringValue()),
	}
	content := f["content"]
	if pos := content.GetStructValue(); pos != nil {
		pf := pos.GetFields()
		cmd.Content = geometry.Position{
			X: pf["x"].GetNumberValue(),
			Y: pf["y"].GetNumberValue(),
			Z: pf["z"].GetNumberValue(),
		}
	} else if content != nil {
		cmd.Content = content.AsInterface()
	}
	return cmd
}

func contentValue(v any) any {
	switch c := v.(type) {
	case nil, string, bool, float64, int:
		return c
	case geometry.Position:
		return map[string]any{"x": c.X, "y": c.Y, "z": c.Z}
	case *geometry.Position:
		if c == nil {
			return nil
		}
		return map[string]any{"x": c.X, "y": c.Y, "z": c.Z}
	}
	return fmt.Sprint(v)
}

// #endregion codec
