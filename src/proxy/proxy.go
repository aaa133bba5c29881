// Package proxy relays a browser prompt to Gemini, attaching the API key on the
// server side so it never reaches front-end code.
package proxy

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dgimmler/gemini-proxy/src/credentials"
)

// Generator is the outbound half of the relay. *gemini.Client implements it.
type Generator interface {
	Generate(ctx context.Context, apiKey, prompt string) (json.RawMessage, error)
}

// Proxy is immutable after New and shared by concurrent invocations.
type Proxy struct {
	gen           Generator
	creds         credentials.Provider
	allowedOrigin string
}

// New builds a Proxy. allowedOrigin may be empty, in which case no CORS
// headers are sent.
func New(gen Generator, creds credentials.Provider, allowedOrigin string) *Proxy {
	return &Proxy{gen: gen, creds: creds, allowedOrigin: allowedOrigin}
}

type promptRequest struct {
	Prompt *string `json:"prompt"`
}

// Handle serves one invocation. It never returns an error to the runtime:
// every failure is turned into a response.
func (p *Proxy) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger := log.With().Str("invocation", invocationID(ctx, request)).Logger()

	if request.HTTPMethod != http.MethodPost {
		logger.Debug().Str("method", request.HTTPMethod).Msg("rejected method")
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusMethodNotAllowed,
			Headers:    p.headers("text/plain; charset=utf-8"),
			Body:       "Method Not Allowed",
		}, nil
	}

	body, err := p.relay(ctx, request)
	if err != nil {
		return p.fail(logger, err), nil
	}

	logger.Debug().Int("status", http.StatusOK).Msg("relayed prompt")
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    p.headers("application/json"),
		Body:       string(body),
	}, nil
}

func (p *Proxy) relay(ctx context.Context, request events.APIGatewayProxyRequest) (json.RawMessage, error) {
	prompt, err := parsePrompt(request)
	if err != nil {
		return nil, err
	}

	apiKey, err := p.creds.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w (%s)", credentials.ErrMissing, p.creds.Name())
	}

	return p.gen.Generate(ctx, apiKey, prompt)
}

func parsePrompt(request events.APIGatewayProxyRequest) (string, error) {
	raw := []byte(request.Body)
	if request.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(request.Body)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		raw = decoded
	}

	var req promptRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if req.Prompt == nil {
		return "", fmt.Errorf("%w: prompt is required", ErrMalformedInput)
	}
	return *req.Prompt, nil
}

func (p *Proxy) fail(logger zerolog.Logger, err error) events.APIGatewayProxyResponse {
	kind, status, message := classify(err)

	ev := logger.Error().Str("kind", kind).Int("status", status)
	if kind == "remote-rejection" {
		if detail := remoteDetail(err); detail != nil {
			ev = ev.Interface("detail", detail)
		}
		ev.Msg("Gemini API error")
	} else {
		ev.Err(err).Msg("proxy function error")
	}

	b, _ := json.Marshal(map[string]string{"error": message})
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    p.headers("application/json"),
		Body:       string(b),
	}
}

func (p *Proxy) headers(contentType string) map[string]string {
	h := map[string]string{"Content-Type": contentType}
	if p.allowedOrigin != "" {
		h["Access-Control-Allow-Origin"] = p.allowedOrigin
		h["Access-Control-Allow-Headers"] = "*"
	}
	return h
}

func invocationID(ctx context.Context, request events.APIGatewayProxyRequest) string {
	if id := request.RequestContext.RequestID; id != "" {
		return id
	}
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return uuid.NewString()
}
