package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/dgimmler/gemini-proxy/src/config"
	"github.com/dgimmler/gemini-proxy/src/credentials"
	"github.com/dgimmler/gemini-proxy/src/gemini"
	"github.com/dgimmler/gemini-proxy/src/logging"
	"github.com/dgimmler/gemini-proxy/src/proxy"
)

// newProxy wires the handler from the function's environment. The key itself
// is resolved per invocation, not here.
func newProxy(cfg config.Config) (*proxy.Proxy, error) {
	creds, err := credentials.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	client := gemini.NewClient(cfg.BaseURL, cfg.Model)
	return proxy.New(client, creds, cfg.AllowedOrigin), nil
}

func main() {
	cfg := config.Load()
	logging.Init(cfg.LogLevel, false)

	p, err := newProxy(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init gemini proxy")
	}
	log.Info().
		Str("model", cfg.Model).
		Str("credential_source", cfg.CredentialSource).
		Msg("gemini proxy ready")

	lambda.Start(p.Handle)
}
