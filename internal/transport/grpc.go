package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"

	"github.com/berkeerdo/grpc-resilient/internal/types"
)

const (
	defaultMaxSendBytes = 5 * 1024 * 1024
	defaultMaxRecvBytes = 5 * 1024 * 1024
)

// grpcHandle wraps a *grpc.ClientConn as a Handle. Request/response values
// passed to Invoke must implement proto.Message when this factory is used;
// the abstraction itself stays opaque (spec §4.E), this is a constraint of
// the default transport, not the core.
type grpcHandle struct {
	conn *grpc.ClientConn
}

// DialRetryer wraps a single dial-time connection attempt with the
// optional, capped/jittered retry policy described in the engine's
// enrichment design (distinct from the Call Orchestrator's own mandatory
// uncapped/unjittered retry loop). Satisfied by *resilience.RetryPolicy.
type DialRetryer interface {
	ExecuteCtx(ctx context.Context, fn func(context.Context) error) error
}

// NewFactory returns a Factory that dials a real *grpc.ClientConn, grounded
// on the dial-option construction used by other gRPC client adapters in the
// ecosystem (TLS/insecure credentials, keepalive, message-size limits). A
// nil retryer dials once per call, leaving all connect-failure retry policy
// to the Connection Manager's reconnect scheduler.
func NewFactory(retryer DialRetryer) Factory {
	return func(ctx context.Context, desc Descriptor) (Handle, error) {
		opts, err := buildDialOptions(desc)
		if err != nil {
			return nil, fmt.Errorf("transport: building dial options: %w", err)
		}

		conn, err := grpc.NewClient(desc.URL, opts...)
		if err != nil {
			return nil, fmt.Errorf("transport: dialing %s: %w", desc.URL, err)
		}

		handle := &grpcHandle{conn: conn}

		if retryer == nil {
			return handle, nil
		}

		err = retryer.ExecuteCtx(ctx, handle.WaitForReady)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		return handle, nil
	}
}

func buildDialOptions(desc Descriptor) ([]grpc.DialOption, error) {
	var opts []grpc.DialOption

	creds, err := buildTransportCredentials(desc)
	if err != nil {
		return nil, err
	}
	opts = append(opts, grpc.WithTransportCredentials(creds))

	if desc.KeepaliveTime > 0 || desc.KeepaliveTimeout > 0 {
		opts = append(opts, grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                desc.KeepaliveTime,
			Timeout:             desc.KeepaliveTimeout,
			PermitWithoutStream: true,
		}))
	}

	maxSend := desc.MaxSendBytes
	if maxSend == 0 {
		maxSend = defaultMaxSendBytes
	}
	maxRecv := desc.MaxRecvBytes
	if maxRecv == 0 {
		maxRecv = defaultMaxRecvBytes
	}
	opts = append(opts, grpc.WithDefaultCallOptions(
		grpc.MaxCallSendMsgSize(maxSend),
		grpc.MaxCallRecvMsgSize(maxRecv),
	))

	return opts, nil
}

func buildTransportCredentials(desc Descriptor) (credentials.TransportCredentials, error) {
	if desc.Insecure {
		return insecure.NewCredentials(), nil
	}

	tlsConfig := &tls.Config{ServerName: desc.ServerName}

	if desc.CertFile != "" && desc.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(desc.CertFile, desc.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("loading client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	if desc.CAFile != "" {
		caCert, err := os.ReadFile(desc.CAFile)
		if err != nil {
			return nil, fmt.Errorf("reading CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate %s", desc.CAFile)
		}
		tlsConfig.RootCAs = pool
	}

	return credentials.NewTLS(tlsConfig), nil
}

func (h *grpcHandle) ChannelState() types.ChannelState {
	return fromConnectivityState(h.conn.GetState())
}

func (h *grpcHandle) WaitForReady(ctx context.Context) error {
	for {
		state := h.conn.GetState()
		if state == connectivity.Ready {
			return nil
		}
		h.conn.Connect()
		if !h.conn.WaitForStateChange(ctx, state) {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fmt.Errorf("transport: channel did not become ready")
		}
	}
}

func (h *grpcHandle) Invoke(ctx context.Context, method string, request, response any, md map[string]string) error {
	if len(md) > 0 {
		pairs := make([]string, 0, len(md)*2)
		for k, v := range md {
			pairs = append(pairs, k, v)
		}
		ctx = metadata.AppendToOutgoingContext(ctx, pairs...)
	}
	return h.conn.Invoke(ctx, method, request, response)
}

func (h *grpcHandle) Close() error {
	return h.conn.Close()
}

func fromConnectivityState(s connectivity.State) types.ChannelState {
	switch s {
	case connectivity.Ready:
		return types.ChannelReady
	case connectivity.Connecting:
		return types.ChannelConnecting
	case connectivity.Idle:
		return types.ChannelIdle
	case connectivity.TransientFailure:
		return types.ChannelTransientFailure
	case connectivity.Shutdown:
		return types.ChannelShutdown
	default:
		return types.ChannelIdle
	}
}

var _ Handle = (*grpcHandle)(nil)
