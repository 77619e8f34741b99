// Package mcptools exposes the game controller operations as MCP
// function tools, so any MCP-speaking conversational orchestrator (the
// voice/LLM layer) can drive a show without knowing the state machine.
package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jwebster45206/improv-engine/pkg/session"
)

// SceneResult is the scene payload returned by scene-producing tools.
type SceneResult struct {
	ID     string `json:"id" jsonschema:"scenario identifier"`
	Prompt string `json:"prompt" jsonschema:"the premise to act out"`
	Hint   string `json:"hint" jsonschema:"acting guidance for the player"`
}

func sceneResult(r session.Round) SceneResult {
	return SceneResult{ID: r.ID, Prompt: r.Prompt, Hint: r.Hint}
}

// Register adds every improv tool to the MCP server, bound to one live
// session controller and its snapshot store.
func Register(server *mcp.Server, ctrl *session.Controller, saver session.Saver) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_current_scene",
		Description: "Returns the current improv scene (id, prompt, hint). The first call opens the show. Safe to retry.",
	}, CurrentSceneHandler(ctrl))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "acknowledge_performance",
		Description: "Records the player's performance for the current scene. Call once per performance; do not retry.",
	}, AcknowledgeHandler(ctrl))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "next_round",
		Description: "Closes the current round after the host's reaction. Returns the next scene, or done=true when the show is over. Do not retry.",
	}, AdvanceHandler(ctrl))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "save_session",
		Description: "Saves a snapshot of the session under a name. Overwrites any prior snapshot of that name.",
	}, SaveHandler(ctrl, saver))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "restart_story",
		Description: "Restarts the show: round counter to zero, transcript cleared. Pass a seed to pick a new set of scenes; omit it to replay the same script.",
	}, RestartHandler(ctrl))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_improv_state",
		Description: "Returns the whole session state for display or debugging. Read-only.",
	}, StateHandler(ctrl))
}

// CurrentSceneInput has no fields; the session is fixed per process.
type CurrentSceneInput struct{}

func CurrentSceneHandler(ctrl *session.Controller) mcp.ToolHandlerFor[CurrentSceneInput, SceneResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ CurrentSceneInput) (*mcp.CallToolResult, SceneResult, error) {
		scene, err := ctrl.CurrentScene()
		if err != nil {
			return nil, SceneResult{}, err
		}
		return nil, sceneResult(scene), nil
	}
}

type AcknowledgeInput struct {
	Text string `json:"text" jsonschema:"transcript of the player's performance"`
}

type AcknowledgeResult struct {
	Phase string `json:"phase" jsonschema:"session phase after the acknowledgment"`
}

func AcknowledgeHandler(ctrl *session.Controller) mcp.ToolHandlerFor[AcknowledgeInput, AcknowledgeResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AcknowledgeInput) (*mcp.CallToolResult, AcknowledgeResult, error) {
		if err := ctrl.AcknowledgePerformance(input.Text); err != nil {
			return nil, AcknowledgeResult{}, err
		}
		return nil, AcknowledgeResult{Phase: string(session.PhaseReacting)}, nil
	}
}

type AdvanceInput struct{}

type AdvanceOutput struct {
	NextScene *SceneResult `json:"next_scene,omitempty" jsonschema:"the next scene, absent when the show is over"`
	Done      bool         `json:"done" jsonschema:"true when all rounds are played"`
}

func AdvanceHandler(ctrl *session.Controller) mcp.ToolHandlerFor[AdvanceInput, AdvanceOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ AdvanceInput) (*mcp.CallToolResult, AdvanceOutput, error) {
		result, err := ctrl.Advance()
		if err != nil {
			return nil, AdvanceOutput{}, err
		}
		out := AdvanceOutput{Done: result.Done}
		if result.NextScene != nil {
			s := sceneResult(*result.NextScene)
			out.NextScene = &s
		}
		return nil, out, nil
	}
}

type SaveInput struct {
	Name string `json:"name" jsonschema:"snapshot name (letters, digits, dash, underscore)"`
}

type SaveResult struct {
	Saved string `json:"saved" jsonschema:"name the snapshot was saved under"`
}

func SaveHandler(ctrl *session.Controller, saver session.Saver) mcp.ToolHandlerFor[SaveInput, SaveResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SaveInput) (*mcp.CallToolResult, SaveResult, error) {
		if err := ctrl.Save(ctx, saver, input.Name); err != nil {
			return nil, SaveResult{}, err
		}
		return nil, SaveResult{Saved: input.Name}, nil
	}
}

type RestartInput struct {
	Seed *int64 `json:"seed,omitempty" jsonschema:"optional seed for picking a fresh set of scenes"`
}

func RestartHandler(ctrl *session.Controller) mcp.ToolHandlerFor[RestartInput, SceneResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RestartInput) (*mcp.CallToolResult, SceneResult, error) {
		if err := ctrl.Restart(input.Seed); err != nil {
			return nil, SceneResult{}, err
		}
		first := ctrl.Snapshot().Rounds[0]
		return nil, sceneResult(first), nil
	}
}

type StateInput struct{}

type StateResult struct {
	State *session.State `json:"state" jsonschema:"full session state"`
}

func StateHandler(ctrl *session.Controller) mcp.ToolHandlerFor[StateInput, StateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ StateInput) (*mcp.CallToolResult, StateResult, error) {
		return nil, StateResult{State: ctrl.Snapshot()}, nil
	}
}
