// Package codec speaks to a remote question-generation service over gRPC.
// Messages are protobuf well-known Struct values so no generated stubs are
// needed on either side.
package codec

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/interview-engine/internal/interview"
)

// #region service
const (
	serviceName    = "interview.GeneratorService"
	generateMethod = "/" + serviceName + "/Generate"
)

// generatorService is the client-side surface of the remote service.
type generatorService interface {
	Generate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type rpcService struct {
	conn grpc.ClientConnInterface
}

func (s rpcService) Generate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := s.conn.Invoke(ctx, generateMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// #endregion service

// #region client-struct
// Client implements interview.Generator against the remote service.
type Client struct {
	conn   *grpc.ClientConn
	client generatorService
}

// #endregion client-struct

// #region constructor
// Dial connects to the generation service at addr.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn, client: rpcService{conn: conn}}, nil
}

// NewClientWithService creates a Client with an injected service.
// Used for testing without a real gRPC connection.
func NewClientWithService(svc generatorService) *Client {
	return &Client{client: svc}
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region generate
// Generate sends the prompt spec and returns the service's raw text.
func (c *Client) Generate(ctx context.Context, spec interview.PromptSpec) (string, error) {
	req, err := encodeSpec(spec)
	if err != nil {
		return "", interview.NewGenerationError(interview.GenInvalidInput, fmt.Errorf("encode request: %w", err))
	}

	resp, err := c.client.Generate(ctx, req)
	if err != nil {
		return "", interview.NewGenerationError(kindForCode(err), fmt.Errorf("generate rpc: %w", err))
	}

	text := resp.GetFields()["text"].GetStringValue()
	if text == "" {
		return "", interview.NewGenerationError(interview.GenUnavailable, errors.New("generate rpc: empty text"))
	}
	return text, nil
}

func encodeSpec(spec interview.PromptSpec) (*structpb.Struct, error) {
	keywords := make([]any, len(spec.Keywords))
	for i, k := range spec.Keywords {
		keywords[i] = k
	}
	return structpb.NewStruct(map[string]any{
		"system":           spec.System(),
		"prompt":           spec.Render(),
		"stage":            spec.Stage.String(),
		"focus":            spec.Focus,
		"pattern":          string(spec.Pattern),
		"keywords":         keywords,
		"max_sentences":    spec.MaxSentences,
		"allow_motivation": spec.AllowMotivation,
	})
}

// kindForCode maps a gRPC status to a generation error kind.
func kindForCode(err error) interview.GenerationErrorKind {
	switch status.Code(err) {
	case codes.DeadlineExceeded:
		return interview.GenTimeout
	case codes.ResourceExhausted:
		return interview.GenQuota
	case codes.InvalidArgument, codes.FailedPrecondition:
		return interview.GenInvalidInput
	default:
		if errors.Is(err, context.DeadlineExceeded) {
			return interview.GenTimeout
		}
		return interview.GenUnavailable
	}
}

// #endregion generate
