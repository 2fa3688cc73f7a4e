// Package relay provides the HTTP endpoint the chat client talks to. It
// accepts {"message": "..."} and either echoes it or forwards it to a
// generative-text provider using a server-held credential.
package relay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/papercomputeco/aiterm/pkg/llm"
	"github.com/papercomputeco/aiterm/pkg/llm/provider"
	"github.com/papercomputeco/aiterm/relay/header"
)

// Error bodies returned to clients.
const (
	errNoMessage       = "No message provided"
	errNoAPIKey        = "API key not configured"
	errServer          = "Server error"
	errUpstreamFailed  = "upstream request failed"
	errUpstreamUnread  = "failed to read upstream response"
	errBuildUpstream   = "internal error"
	statusAPIWorking   = "API working"
	echoReplyPrefix    = "AI response: "
	upstreamStatusText = "upstream returned status %d"
)

// Relay is a stateless message relay. Each POST results in at most one
// upstream call; nothing is retried or cached.
type Relay struct {
	config        Config
	logger        *slog.Logger
	httpClient    *http.Client
	server        *fiber.App
	provider      provider.Provider
	upstream      string
	model         string
	headerHandler *header.Handler
}

// New creates a new Relay.
// Returns an error if the mode or provider type is not recognized.
func New(config Config, logger *slog.Logger) (*Relay, error) {
	if err := config.setDefaults(); err != nil {
		return nil, err
	}

	providerType := config.ProviderType
	if providerType == "" {
		providerType = provider.Default
	}
	prov, err := provider.New(providerType)
	if err != nil {
		return nil, fmt.Errorf("could not create new provider: %w", err)
	}
	config.ProviderType = providerType

	upstream := config.UpstreamURL
	if upstream == "" {
		upstream = prov.DefaultUpstream()
	}
	model := config.Model
	if model == "" {
		model = prov.DefaultModel()
	}

	r := &Relay{
		config:        config,
		logger:        logger,
		provider:      prov,
		upstream:      upstream,
		model:         model,
		headerHandler: header.NewHandler(),
		httpClient: &http.Client{
			// LLM requests can be slow
			Timeout: 5 * time.Minute,
		},
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		ErrorHandler:          r.handleError,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	app.Use(compress.New())

	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})
	app.All(config.Path, r.handleChat)

	r.server = app
	return r, nil
}

// Run starts the relay server on the configured listening address
func (r *Relay) Run() error {
	r.logStart(r.config.ListenAddr)
	return r.server.Listen(r.config.ListenAddr)
}

// RunWithListener starts the relay server using the provided listener.
func (r *Relay) RunWithListener(listener net.Listener) error {
	r.logStart(listener.Addr().String())
	return r.server.Listener(listener)
}

// Close gracefully shuts down the relay.
func (r *Relay) Close() error {
	return r.server.Shutdown()
}

// Handler exposes the relay as a net/http handler, for embedding it in
// another server or a serverless host.
func (r *Relay) Handler() http.Handler {
	return adaptor.FiberApp(r.server)
}

// App returns the underlying fiber app.
func (r *Relay) App() *fiber.App {
	return r.server
}

func (r *Relay) logStart(addr string) {
	attrs := []any{
		"listen", addr,
		"path", r.config.Path,
		"mode", r.config.Mode,
	}
	if r.config.Mode == ModeForward {
		attrs = append(attrs,
			"provider", r.provider.Name(),
			"upstream", r.upstream,
			"model", r.model,
		)
	}
	r.logger.Info("starting relay server", attrs...)
}

// handleChat answers the chat route for every method.
func (r *Relay) handleChat(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.JSON(llm.StatusResponse{Message: statusAPIWorking})
	}

	var req llm.RelayRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil || strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: errNoMessage})
	}

	if r.config.Mode == ModeEcho {
		r.logger.Debug("echoing message", "request_id", requestID(c))
		return c.JSON(llm.RelayResponse{Reply: echoReplyPrefix + req.Message})
	}

	return r.forward(c, req.Message)
}

// forward makes the single upstream call for a message and mirrors the result.
func (r *Relay) forward(c *fiber.Ctx, message string) error {
	startTime := time.Now()
	reqID := requestID(c)

	apiKey := ""
	if r.config.Keys != nil {
		apiKey = r.config.Keys.APIKey()
	}
	if apiKey == "" && r.provider.RequiresAPIKey() {
		r.logger.Error("no API key configured", "provider", r.provider.Name(), "request_id", reqID)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: errNoAPIKey})
	}

	req := llm.NewPrompt(r.model, message, r.config.SystemInstruction)
	req.MaxTokens = r.config.Generation.MaxTokens
	req.Temperature = r.config.Generation.Temperature

	body, err := r.provider.BuildRequest(req)
	if err != nil {
		r.logger.Error("failed to build upstream request", "error", err, "request_id", reqID)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: errBuildUpstream})
	}

	endpoint := r.provider.Endpoint(r.upstream, r.model)
	httpReq, err := http.NewRequestWithContext(c.Context(), http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		r.logger.Error("failed to create upstream request", "error", err, "request_id", reqID)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: errBuildUpstream})
	}

	r.headerHandler.SetUpstreamRequestHeaders(c, httpReq)
	httpReq.Header.Set("Content-Type", "application/json")
	r.provider.Authorize(httpReq, apiKey)

	r.logger.Debug("forwarding message to upstream",
		"provider", r.provider.Name(),
		"model", r.model,
		"url", endpoint,
		"request_id", reqID,
	)

	httpResp, err := r.httpClient.Do(httpReq)
	if err != nil {
		r.logger.Error("upstream request failed", "error", err, "request_id", reqID)
		return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{Error: errUpstreamFailed})
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		r.logger.Error("failed to read upstream response", "error", err, "request_id", reqID)
		return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{Error: errUpstreamUnread})
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		msg := llm.ErrorMessage(respBody)
		if msg == "" {
			msg = fmt.Sprintf(upstreamStatusText, httpResp.StatusCode)
		}
		r.logger.Warn("upstream returned error",
			"status", httpResp.StatusCode,
			"error", msg,
			"request_id", reqID,
		)
		return c.Status(httpResp.StatusCode).JSON(llm.ErrorResponse{Error: msg})
	}

	r.headerHandler.SetClientResponseHeaders(c, httpResp)

	r.logger.Info("relayed message",
		"provider", r.provider.Name(),
		"status", httpResp.StatusCode,
		"duration", time.Since(startTime),
		"request_id", reqID,
	)

	return c.Status(httpResp.StatusCode).Send(respBody)
}

// handleError renders every unhandled error, including recovered panics, in
// the JSON error envelope.
func (r *Relay) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := errServer

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		r.logger.Error("request failed", "error", err, "path", c.Path(), "request_id", requestID(c))
	}

	return c.Status(code).JSON(llm.ErrorResponse{Error: msg})
}

func requestID(c *fiber.Ctx) string {
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
