// Package mcp exposes the simulator to MCP-speaking assistants as a thin
// client that proxies every tool call to the REST API.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jebob/snakes-and-ladders/game/engine"
	"github.com/jebob/snakes-and-ladders/game/service"
)

// Client is a thin MCP client that proxies to the REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API.
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Snakes and Ladders Simulator",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Snakes and Ladders Simulator - MCP Interface

This is a thin client that proxies all requests to the REST API server.

The simulator plays single-token snakes-and-ladders games and reports
statistics: rolls, climb/slide distances, lucky and unlucky rolls, and the
longest turn. Interactive sessions play one turn at a time; batches run
many games at once and reduce the results to min/avg/max summaries.

AVAILABLE TOOLS:
- create_session: Start a new game on a named board (or the default)
- list_sessions / get_session: Inspect active games
- play_turn: Roll the die until the turn ends (extra rolls on a max face)
- run_game: Play the game out to the winning square
- reset_game: Restart a session's game from square 0
- game_stats: Get the session's accumulated statistics
- run_batch: Run many games and get aggregate statistics
- get_batch / list_batches: Retrieve archived batch results
- list_configs: List available board configurations
- game_rules: Get the rules the simulator plays by`),
	)
	c.registerTools()
}

func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional board selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the board config to use (optional, defaults to the canonical board)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to retrieve",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "play_turn",
		Description: "Play one turn: roll the die, move the token, follow any snake or ladder. Rolling the die's highest face extends the turn with another roll.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handlePlayTurn)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_game",
		Description: "Play the session's game out until the token lands exactly on the winning square (or the board's turn cap stops it)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRunGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Restart a session's game from square 0 with zeroed statistics",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleResetGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_stats",
		Description: "Get the accumulated statistics of a session's game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameStats)

	// Batch simulation
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_batch",
		Description: "Run many independent games on a board and reduce their statistics to min/avg/max summaries",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the board config to use (optional)",
				},
				"iterations": map[string]interface{}{
					"type":        "integer",
					"description": "Number of games to run (optional, defaults to the board's configured batch size)",
				},
			},
		},
	}, c.handleRunBatch)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_batch",
		Description: "Retrieve an archived batch result by its ID",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"batch_id": map[string]interface{}{
					"type":        "string",
					"description": "Batch ID to retrieve",
				},
			},
			Required: []string{"batch_id"},
		},
	}, c.handleGetBatch)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_batches",
		Description: "List archived batch results, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListBatches)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available board configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_rules",
		Description: "Get the rules the simulator plays by",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameRules)
}

// GetMCPServer returns the underlying MCP server for serving.
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// apiCall performs one REST call against the API server.
func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func stringArg(request mcp.CallToolRequest, key string) string {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return ""
	}
	value, _ := args[key].(string)
	return value
}

func intArg(request mcp.CallToolRequest, key string) int {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return 0
	}
	// JSON numbers decode as float64
	value, _ := args[key].(float64)
	return int(value)
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]string{}
	if configID := stringArg(request, "config_id"); configID != "" {
		body["config_id"] = configID
	}

	var info service.SessionInfo
	if err := c.apiCall("POST", "/api/sessions", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nBoard: %s (%d squares)\n",
		info.ID, info.ConfigName, info.BoardSize)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall("GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		state := fmt.Sprintf("at square %d/%d", s.Position, s.BoardSize)
		if s.Won {
			state = "won"
		}
		result += fmt.Sprintf("- %s (Board: %s, %s, Created: %s)\n",
			s.ID, s.ConfigName, state, s.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")

	var info service.SessionInfo
	if err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handlePlayTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")

	var result service.TurnResult
	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/turn", sessionID), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatTurnResult(&result)), nil
}

func (c *Client) handleRunGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")

	var result service.GameResult
	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/run", sessionID), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatGameResult(&result)), nil
}

func (c *Client) handleResetGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")

	var info service.SessionInfo
	if err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/reset", sessionID), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Session %s reset to square 0\n", info.ID)), nil
}

func (c *Client) handleGameStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")

	var gameStats engine.Stats
	if err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/stats", sessionID), nil, &gameStats); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatStats(&gameStats)), nil
}

func (c *Client) handleRunBatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]interface{}{}
	if configID := stringArg(request, "config_id"); configID != "" {
		body["config_id"] = configID
	}
	if iterations := intArg(request, "iterations"); iterations > 0 {
		body["iterations"] = iterations
	}

	var record service.BatchRecord
	if err := c.apiCall("POST", "/api/batches", body, &record); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatBatchRecord(&record)), nil
}

func (c *Client) handleGetBatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	batchID := stringArg(request, "batch_id")

	var record service.BatchRecord
	if err := c.apiCall("GET", fmt.Sprintf("/api/batches/%s", batchID), nil, &record); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatBatchRecord(&record)), nil
}

func (c *Client) handleListBatches(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count   int                   `json:"count"`
		Batches []service.BatchRecord `json:"batches"`
	}
	if err := c.apiCall("GET", "/api/batches", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Archived Batches (%d):\n\n", response.Count)
	for _, b := range response.Batches {
		result += fmt.Sprintf("- %s (Board: %s, %d games, avg %.1f rolls)\n",
			b.ID, b.ConfigName, b.Iterations, b.Result.Rolls.Avg)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count   int                  `json:"count"`
		Configs []service.ConfigInfo `json:"configs"`
	}
	if err := c.apiCall("GET", "/api/configs", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Available Boards (%d):\n\n", response.Count)
	for _, cfg := range response.Configs {
		result += fmt.Sprintf("- %s: %s (%d squares, default batch %d games)\n",
			cfg.ConfigID, cfg.Name, cfg.Size, cfg.Iterations)
		if cfg.Description != "" {
			result += fmt.Sprintf("  %s\n", cfg.Description)
		}
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rules := `SNAKES AND LADDERS - SIMULATION RULES

MOVEMENT:
- One token starts on square 0 (off the board).
- Each roll moves the token forward by the die value.
- Landing on a snake's head slides the token down; landing on a ladder's
  foot climbs it up. Chained routes are followed to the end.
- The game is won by landing exactly on the last square. A roll that would
  overshoot it counts but does not move the token.

TURNS:
- Rolling the die's highest face grants another roll in the same turn.
- A turn is the full sequence of rolls up to the first non-maximum roll.

LUCK:
- Landing on a ladder, landing within 2 squares of a snake without hitting
  it, or winning counts as a lucky roll.
- Landing on a snake counts as an unlucky roll, even if the square would
  otherwise qualify as lucky.

STATISTICS:
- Per game: rolls, turns, climb/slide counts and distances, biggest
  single-turn climb and slide, longest turn, lucky and unlucky rolls.
- Per batch: min/avg/max of each metric across games, plus global maxima.`
	return mcp.NewToolResultText(rules), nil
}

// Formatters

func formatSessionInfo(info *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\n", info.ID)
	fmt.Fprintf(&b, "Board: %s (%d squares)\n", info.ConfigName, info.BoardSize)
	fmt.Fprintf(&b, "Position: %d\n", info.Position)
	if info.Won {
		b.WriteString("Status: WON\n")
	} else {
		b.WriteString("Status: in progress\n")
	}
	fmt.Fprintf(&b, "Created: %s\n", info.CreatedAt.Format(time.RFC3339))
	if info.Stats != nil {
		b.WriteString("\n")
		b.WriteString(formatStats(info.Stats))
	}
	return b.String()
}

func formatTurnResult(result *service.TurnResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Turn %d: rolled %v\n", result.Turn, result.Rolls)
	if result.Climb > 0 {
		fmt.Fprintf(&b, "Climbed %d squares\n", result.Climb)
	}
	if result.Slide > 0 {
		fmt.Fprintf(&b, "Slid %d squares\n", result.Slide)
	}
	fmt.Fprintf(&b, "Position: %d\n", result.Position)
	if result.Won {
		b.WriteString("GAME WON!\n")
	}
	return b.String()
}

func formatGameResult(result *service.GameResult) string {
	var b strings.Builder
	if result.Won {
		fmt.Fprintf(&b, "Game won in %d turns (%d rolls)\n",
			result.Stats.TurnCount, result.Stats.RollCount)
	} else if result.Capped {
		fmt.Fprintf(&b, "Game stopped by the turn cap after %d turns at square %d\n",
			result.Stats.TurnCount, result.Position)
	}
	b.WriteString("\n")
	b.WriteString(formatStats(&result.Stats))
	return b.String()
}

func formatStats(s *engine.Stats) string {
	var b strings.Builder
	b.WriteString("Statistics:\n")
	fmt.Fprintf(&b, "  Turns: %d, Rolls: %d\n", s.TurnCount, s.RollCount)
	fmt.Fprintf(&b, "  Climbs: %d (distance %d, biggest %d)\n",
		s.ClimbCount, s.ClimbDistance, s.BiggestClimb)
	fmt.Fprintf(&b, "  Slides: %d (distance %d, biggest %d)\n",
		s.SlideCount, s.SlideDistance, s.BiggestSlide)
	fmt.Fprintf(&b, "  Lucky rolls: %d, Unlucky rolls: %d\n", s.LuckyRolls, s.UnluckyRolls)
	fmt.Fprintf(&b, "  Longest turn: %v\n", s.LongestTurn)
	return b.String()
}

func formatBatchRecord(record *service.BatchRecord) string {
	r := record.Result
	var b strings.Builder
	fmt.Fprintf(&b, "Batch %s: %d games on '%s' (d%d) in %dms\n\n",
		record.ID, record.Iterations, record.ConfigName, record.DieSize, record.ElapsedMS)
	fmt.Fprintf(&b, "  Rolls:          min %d, avg %.1f, max %d\n", r.Rolls.Min, r.Rolls.Avg, r.Rolls.Max)
	fmt.Fprintf(&b, "  Climb distance: min %d, avg %.1f, max %d\n", r.ClimbDistance.Min, r.ClimbDistance.Avg, r.ClimbDistance.Max)
	fmt.Fprintf(&b, "  Slide distance: min %d, avg %.1f, max %d\n", r.SlideDistance.Min, r.SlideDistance.Avg, r.SlideDistance.Max)
	fmt.Fprintf(&b, "  Lucky rolls:    min %d, avg %.1f, max %d\n", r.LuckyRolls.Min, r.LuckyRolls.Avg, r.LuckyRolls.Max)
	fmt.Fprintf(&b, "  Unlucky rolls:  min %d, avg %.1f, max %d\n", r.UnluckyRolls.Min, r.UnluckyRolls.Avg, r.UnluckyRolls.Max)
	fmt.Fprintf(&b, "  Biggest turn climb: %d, biggest turn slide: %d\n", r.BiggestTurnClimb, r.BiggestTurnSlide)
	fmt.Fprintf(&b, "  Longest turn: %v\n", r.LongestTurn)
	return b.String()
}
