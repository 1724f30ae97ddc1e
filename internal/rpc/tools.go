package rpc

import (
	"context"
	"encoding/json"
)

func (s *Server) listTools() interface{} {
	return map[string]interface{}{
		"tools": []interface{}{
			map[string]interface{}{
				"name":        "validate_project",
				"description": "Check whether a Jira project exists and has at least one issue visible to the configured credentials.",
				"inputSchema": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"project": map[string]interface{}{"type": "string"},
					},
					"required": []string{"project"},
				},
			},
			map[string]interface{}{
				"name":        "list_sprints",
				"description": "List the active sprint and the most recent closed sprints of a project's board.",
				"inputSchema": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"project":     map[string]interface{}{"type": "string"},
						"limit":       map[string]interface{}{"type": "integer"},
						"name_filter": map[string]interface{}{"type": "string"},
					},
					"required": []string{"project"},
				},
			},
			map[string]interface{}{
				"name":        "analyze_sprint",
				"description": "Fetch, normalize and summarize all issues of one sprint.",
				"inputSchema": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"project":   map[string]interface{}{"type": "string"},
						"sprint_id": map[string]interface{}{"type": "integer"},
					},
					"required": []string{"project", "sprint_id"},
				},
			},
			map[string]interface{}{
				"name":        "analyze_history",
				"description": "Fetch, normalize and summarize issues resolved in a date range (YYYY-MM-DD).",
				"inputSchema": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"project": map[string]interface{}{"type": "string"},
						"from":    map[string]interface{}{"type": "string"},
						"to":      map[string]interface{}{"type": "string"},
					},
					"required": []string{"project", "from", "to"},
				},
			},
			map[string]interface{}{
				"name":        "invalidate_cache",
				"description": "Drop cached results for a project, or for a single sprint when sprint_id is given.",
				"inputSchema": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"project":   map[string]interface{}{"type": "string"},
						"sprint_id": map[string]interface{}{"type": "integer"},
					},
					"required": []string{"project"},
				},
			},
		},
	}
}

func (s *Server) callTool(ctx context.Context, params json.RawMessage) (interface{}, interface{}) {
	var call struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments"`
	}
	if err := json.Unmarshal(params, &call); err != nil {
		return nil, map[string]interface{}{"code": -32602, "message": "Invalid params"}
	}

	arg := func(key string) string {
		v, _ := call.Arguments[key].(string)
		return v
	}
	argInt := func(key string) int {
		v, _ := call.Arguments[key].(float64)
		return int(v)
	}

	var data interface{}
	var err error

	switch call.Name {
	case "validate_project":
		var ok bool
		ok, err = s.pipe.ValidateProject(ctx, arg("project"))
		data = map[string]interface{}{"project": arg("project"), "valid": ok}
	case "list_sprints":
		data, err = s.pipe.Sprints(ctx, arg("project"), argInt("limit"), arg("name_filter"))
	case "analyze_sprint":
		data, err = s.pipe.FetchSprint(ctx, arg("project"), argInt("sprint_id"))
	case "analyze_history":
		data, err = s.pipe.FetchRange(ctx, arg("project"), arg("from"), arg("to"))
	case "invalidate_cache":
		var dropped int
		if id := argInt("sprint_id"); id > 0 {
			dropped = s.pipe.InvalidateSprint(arg("project"), id)
		} else {
			dropped = s.pipe.Invalidate(arg("project"))
		}
		data = map[string]interface{}{"dropped": dropped}
	default:
		return nil, map[string]interface{}{"code": -32601, "message": "Tool not found"}
	}

	if err != nil {
		return nil, map[string]interface{}{"code": -32000, "message": err.Error()}
	}

	return map[string]interface{}{
		"content": []interface{}{
			map[string]interface{}{
				"type": "text",
				"text": s.formatResult(data),
			},
		},
	}, nil
}
