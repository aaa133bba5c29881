// devserver runs the gemini proxy behind a plain HTTP listener so the front
// end can be developed locally against the same path it uses when deployed.
package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/dgimmler/gemini-proxy/src/config"
	"github.com/dgimmler/gemini-proxy/src/credentials"
	"github.com/dgimmler/gemini-proxy/src/gemini"
	"github.com/dgimmler/gemini-proxy/src/logging"
	"github.com/dgimmler/gemini-proxy/src/proxy"
)

const functionPath = "/.netlify/functions/gemini-proxy"

type lambdaHandler func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// adapt turns an API Gateway style handler into an http.Handler.
func adapt(h lambdaHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "unable to read body", http.StatusBadRequest)
			return
		}

		headers := make(map[string]string, len(r.Header))
		for k := range r.Header {
			headers[k] = r.Header.Get(k)
		}

		resp, err := h(r.Context(), events.APIGatewayProxyRequest{
			HTTPMethod:     r.Method,
			Path:           r.URL.Path,
			Headers:        headers,
			Body:           string(body),
			RequestContext: events.APIGatewayProxyRequestContext{RequestID: uuid.NewString()},
		})
		if err != nil {
			log.Error().Err(err).Msg("handler returned error")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(resp.StatusCode)
		_, _ = io.WriteString(w, resp.Body)
	})
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logging.Init(cfg.LogLevel, true)

	creds, err := credentials.FromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("credential provider")
	}
	p := proxy.New(gemini.NewClient(cfg.BaseURL, cfg.Model), creds, cfg.AllowedOrigin)

	mux := http.NewServeMux()
	mux.Handle(functionPath, adapt(p.Handle))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	log.Info().Str("port", cfg.Port).Str("path", functionPath).Msg("dev server online")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server error")
	}
}
