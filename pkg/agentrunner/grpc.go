package agentrunner

import (
	"context"
	"fmt"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/dynamous-community/YokeFlow/pkg/apierrors"
)

// gRPC method names on the LLM sidecar service. There is no .proto source
// in this tree to generate stubs from, so the thin client below talks to
// these methods directly through grpc.ClientConn, marshaling requests and
// responses as the well-known structpb/wrapperspb message types rather than
// a hand-forged set of generated types — the same approach the teacher's
// pkg/llm/client.go takes against its generated pb package, minus the
// generated package itself.
const (
	methodStreamAgent = "/yokeflow.llm.LLMService/StreamAgent"
	methodAnalyze     = "/yokeflow.llm.LLMService/Analyze"
)

// GRPCTransport implements LLMTransport against a gRPC LLM sidecar,
// mirroring the teacher's pkg/llm.Client connection shape.
type GRPCTransport struct {
	conn *grpc.ClientConn
}

// DialGRPC connects to the LLM sidecar at addr.
func DialGRPC(addr string) (*GRPCTransport, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, apierrors.External("connecting to LLM service", err)
	}
	return &GRPCTransport{conn: conn}, nil
}

// Close releases the underlying connection.
func (t *GRPCTransport) Close() error { return t.conn.Close() }

func (t *GRPCTransport) StartAgent(ctx context.Context, req AgentRequest) (AgentStream, error) {
	reqStruct, err := structpb.NewStruct(map[string]interface{}{
		"session_id":    req.SessionID,
		"model":         req.Model,
		"system_prompt": req.SystemPrompt,
		"user_prompt":   req.UserPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("building agent request: %w", err)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	stream, err := t.conn.NewStream(streamCtx, &grpc.StreamDesc{
		StreamName:    "StreamAgent",
		ServerStreams: true,
		ClientStreams: true,
	}, methodStreamAgent)
	if err != nil {
		cancel()
		return nil, apierrors.External("opening agent stream", err)
	}

	if err := stream.SendMsg(reqStruct); err != nil {
		cancel()
		return nil, apierrors.External("sending agent request", err)
	}

	return &grpcAgentStream{stream: stream, cancel: cancel}, nil
}

func (t *GRPCTransport) Analyze(ctx context.Context, model, prompt string) (string, error) {
	req, err := structpb.NewStruct(map[string]interface{}{
		"model":  model,
		"prompt": prompt,
	})
	if err != nil {
		return "", fmt.Errorf("building analyze request: %w", err)
	}

	resp := &wrapperspb.StringValue{}
	if err := t.conn.Invoke(ctx, methodAnalyze, req, resp); err != nil {
		return "", apierrors.External("analyze call failed", err)
	}
	return resp.GetValue(), nil
}

// grpcAgentStream adapts a raw client stream to the AgentStream interface.
type grpcAgentStream struct {
	stream grpc.ClientStream
	cancel context.CancelFunc
}

func (s *grpcAgentStream) Recv(ctx context.Context) (*Message, error) {
	done := make(chan struct{})
	var msg *structpb.Struct
	var err error

	go func() {
		defer close(done)
		msg = &structpb.Struct{}
		err = s.stream.RecvMsg(msg)
	}()

	select {
	case <-done:
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, apierrors.External("reading agent stream", err)
		}
		return decodeMessage(msg), nil
	case <-ctx.Done():
		return nil, apierrors.Interrupted("agent stream read cancelled")
	}
}

func (s *grpcAgentStream) SendToolResult(ctx context.Context, result ToolResultInput) error {
	payload, err := structpb.NewStruct(map[string]interface{}{
		"tool_use_id": result.ToolUseID,
		"ok":          result.OK,
		"content":     result.Content,
	})
	if err != nil {
		return fmt.Errorf("building tool result: %w", err)
	}
	if err := s.stream.SendMsg(payload); err != nil {
		return apierrors.External("sending tool result", err)
	}
	return nil
}

func (s *grpcAgentStream) Close() error {
	s.cancel()
	return s.stream.CloseSend()
}

func decodeMessage(s *structpb.Struct) *Message {
	m := &Message{}
	fields := s.GetFields()

	if blocks, ok := fields["blocks"]; ok {
		for _, v := range blocks.GetListValue().GetValues() {
			bf := v.GetStructValue().GetFields()
			switch bf["kind"].GetStringValue() {
			case string(BlockText):
				m.Blocks = append(m.Blocks, ContentBlock{Kind: BlockText, Text: bf["text"].GetStringValue()})
			case string(BlockToolUse):
				input := map[string]interface{}{}
				if in := bf["tool_input"].GetStructValue(); in != nil {
					input = in.AsMap()
				}
				m.Blocks = append(m.Blocks, ContentBlock{
					Kind:      BlockToolUse,
					ToolUseID: bf["tool_use_id"].GetStringValue(),
					ToolName:  bf["tool_name"].GetStringValue(),
					ToolInput: input,
				})
			case string(BlockToolResult):
				m.Blocks = append(m.Blocks, ContentBlock{
					Kind:          BlockToolResult,
					ToolResultFor: bf["tool_result_for"].GetStringValue(),
					ToolResultOK:  bf["tool_result_ok"].GetBoolValue(),
					ToolResult:    bf["tool_result"].GetStringValue(),
				})
			}
		}
	}

	m.TokensInput = int(fields["tokens_input"].GetNumberValue())
	m.TokensOutput = int(fields["tokens_output"].GetNumberValue())
	m.TokensCacheCreation = int(fields["tokens_cache_creation"].GetNumberValue())
	m.TokensCacheRead = int(fields["tokens_cache_read"].GetNumberValue())
	m.CostUSD = fields["cost_usd"].GetNumberValue()
	m.Final = fields["final"].GetBoolValue()
	return m
}
