package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/gibbs"
	"github.com/aretw0/gibbs/internal/logging"
	"github.com/aretw0/gibbs/pkg/domain"
	"github.com/aretw0/gibbs/pkg/equilibrium"
	"github.com/aretw0/gibbs/pkg/ports"
	"github.com/aretw0/gibbs/pkg/thermo"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CalculateResponse is the structured result of calculate_equilibrium.
type CalculateResponse struct {
	Run  domain.RunRecord  `json:"run" jsonschema_description:"The recorded calculation, including the product stream"`
	Diff domain.StreamDiff `json:"diff" jsonschema_description:"Changes between feed and product"`
}

// ModelsResponse lists the available thermodynamic models.
type ModelsResponse struct {
	Models []string `json:"models" jsonschema_description:"Registered thermodynamic model names"`
}

// Server exposes equilibrium calculations as MCP tools.
// Every call builds a fresh reactor, so the server holds no unit state.
type Server struct {
	store     ports.RunStore
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithStore persists every successful calculation.
func WithStore(store ports.RunStore) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithLifecycleHooks forwards hooks to every reactor the server builds.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Server) {
		s.hooks = hooks
	}
}

// WithLogger sets the logger handed to reactors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(opts ...Option) *Server {
	s := &Server{
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("gibbs-mcp", strings.TrimSpace(gibbs.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	// TOOL: calculate_equilibrium
	calcTool := mcp.NewTool("calculate_equilibrium",
		mcp.WithDescription("Relax a feed stream towards chemical equilibrium at the given temperature and pressure."),
		mcp.WithString("feed", mcp.Required(), mcp.Description(`JSON object of species amounts in mol, e.g. {"CH4": 1, "H2O": 2}`)),
		mcp.WithNumber("temperature", mcp.Description("Reactor temperature in K (default 298.15)")),
		mcp.WithNumber("pressure", mcp.Description("Reactor pressure in Pa (default 101325)")),
		mcp.WithString("model", mcp.Description("Thermodynamic model name (default molefraction)")),
		mcp.WithString("model_params", mcp.Description("JSON object of model parameters (optional)")),
		mcp.WithNumber("iterations", mcp.Description("Override the number of relaxation steps (optional)")),
		mcp.WithOutputSchema[CalculateResponse](),
	)
	s.mcpServer.AddTool(calcTool, mcp.NewStructuredToolHandler(s.handleCalculate))

	// TOOL: list_models
	modelsTool := mcp.NewTool("list_models",
		mcp.WithDescription("List the thermodynamic models available to calculate_equilibrium."),
		mcp.WithOutputSchema[ModelsResponse](),
	)
	s.mcpServer.AddTool(modelsTool, mcp.NewStructuredToolHandler(s.handleListModels))
}

func (s *Server) handleListModels(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ModelsResponse, error) {
	return ModelsResponse{Models: thermo.Names()}, nil
}

func (s *Server) handleCalculate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CalculateResponse, error) {
	feedStr, _ := args["feed"].(string)
	if feedStr == "" {
		return CalculateResponse{}, errors.New("feed is required")
	}
	var composition domain.Composition
	if err := json.Unmarshal([]byte(feedStr), &composition); err != nil {
		return CalculateResponse{}, fmt.Errorf("invalid feed: %w", err)
	}

	modelName, _ := args["model"].(string)
	if modelName == "" {
		modelName = thermo.MoleFractionName
	}
	var params map[string]any
	if paramStr, ok := args["model_params"].(string); ok && paramStr != "" {
		if err := json.Unmarshal([]byte(paramStr), &params); err != nil {
			return CalculateResponse{}, fmt.Errorf("invalid model_params: %w", err)
		}
	}

	opts := []gibbs.Option{
		gibbs.WithName("mcp"),
		gibbs.WithLogger(s.logger),
		gibbs.WithLifecycleHooks(s.hooks),
	}
	if n, ok := args["iterations"].(float64); ok {
		opts = append(opts, gibbs.WithSolverOptions(equilibrium.WithIterations(int(n))))
	}

	r := gibbs.New(opts...)
	if err := r.UseModel(modelName, params); err != nil {
		return CalculateResponse{}, err
	}

	feed := domain.NewMaterialState("Feed")
	feed.Composition = composition
	r.SetFeed(feed)
	if t, ok := args["temperature"].(float64); ok {
		r.SetTemperature(t)
	}
	if p, ok := args["pressure"].(float64); ok {
		r.SetPressure(p)
	}

	if err := r.Initialize(); err != nil {
		return CalculateResponse{}, err
	}
	defer r.Terminate()

	if err := r.Calculate(); err != nil {
		return CalculateResponse{}, err
	}

	record, err := r.Record()
	if err != nil {
		return CalculateResponse{}, err
	}
	if s.store != nil {
		if err := s.store.Save(ctx, record); err != nil {
			return CalculateResponse{}, fmt.Errorf("failed to persist run: %w", err)
		}
	}

	return CalculateResponse{
		Run:  record,
		Diff: domain.Diff(record.Feed, record.Product),
	}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: gibbs://models
	s.mcpServer.AddResource(mcp.NewResource("gibbs://models", "Thermodynamic Models",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, _ := json.Marshal(thermo.Names())
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "gibbs://models",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
