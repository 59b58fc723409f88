// Package mcp provides the MCP (Model Context Protocol) server for relic.
//
// The server exposes the collection graph to MCP clients: browsing the
// file entities, adding relations one at a time, running validation,
// and exporting the graph. It is the interactive editing surface of
// the tool; each relation added through it lands atomically in the
// persistent store.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/archivekit/relic/internal/config"
	"github.com/archivekit/relic/internal/graph"
	"github.com/archivekit/relic/internal/serialize"
	"github.com/archivekit/relic/internal/storage"
	"github.com/archivekit/relic/internal/validate"
)

// Server represents the MCP server.
type Server struct {
	store  storage.Backend
	cfg    config.Config
	server *mcp.Server
}

// Tool represents an MCP tool.
type Tool struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
}

// Resource represents an MCP resource.
type Resource struct {
	URI         string
	Name        string
	Description string
	MimeType    string
}

// NewServer creates a new MCP server.
func NewServer(store storage.Backend, cfg config.Config) *Server {
	s := &Server{
		store: store,
		cfg:   cfg,
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "relic",
		Version: "0.1.0",
	}, nil)

	return s
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []Tool {
	return []Tool{
		{
			Name:        "relic_list_files",
			Description: "List file entities in the collection graph with their identifier, label, and original path.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"limit": {Type: "integer", Description: "Maximum number of entities"},
				},
			},
		},
		{
			Name:        "relic_vocabulary",
			Description: "List the relation predicate names understood by relic_add_relation.",
			InputSchema: &jsonschema.Schema{
				Type:       "object",
				Properties: map[string]*jsonschema.Schema{},
			},
		},
		{
			Name:        "relic_add_relation",
			Description: "Add one relation between two files by identifier. The change is persisted atomically.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"subject_uid": {Type: "string", Description: "Identifier of the subject file"},
					"object_uid":  {Type: "string", Description: "Identifier of the object file"},
					"predicate":   {Type: "string", Description: "Predicate name from the vocabulary, or a full IRI"},
					"label":       {Type: "string", Description: "Optional free-text label for the relation"},
				},
				Required: []string{"subject_uid", "object_uid", "predicate"},
			},
		},
		{
			Name:        "relic_validate",
			Description: "Run constraint validation against the collection graph and return the report.",
			InputSchema: &jsonschema.Schema{
				Type:       "object",
				Properties: map[string]*jsonschema.Schema{},
			},
		},
		{
			Name:        "relic_export",
			Description: "Serialize the collection graph and return it as text.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"format": {Type: "string", Description: "Serialization format: turtle or ntriples"},
				},
			},
		},
	}
}

// ListResources returns all registered resources.
func (s *Server) ListResources() []Resource {
	return []Resource{
		{
			URI:         "relic://overview",
			Name:        "Collection Overview",
			Description: "Summary statistics for the collection graph",
			MimeType:    "text/plain",
		},
		{
			URI:         "relic://vocabulary",
			Name:        "Relation Vocabulary",
			Description: "Predicate names accepted when adding relations",
			MimeType:    "text/plain",
		},
	}
}

// CallTool executes a tool with the given arguments.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	switch name {
	case "relic_list_files":
		limit, _ := args["limit"].(float64)
		if limit == 0 {
			limit = 50
		}
		return s.handleListFiles(ctx, int(limit))
	case "relic_vocabulary":
		return vocabularyText(), nil
	case "relic_add_relation":
		subject, _ := args["subject_uid"].(string)
		object, _ := args["object_uid"].(string)
		predicate, _ := args["predicate"].(string)
		label, _ := args["label"].(string)
		return s.handleAddRelation(ctx, graph.Descriptor{
			SubjectUID: subject,
			ObjectUID:  object,
			Predicate:  predicate,
			Label:      label,
		})
	case "relic_validate":
		return s.handleValidate(ctx)
	case "relic_export":
		format, _ := args["format"].(string)
		return s.handleExport(ctx, format)
	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

// ReadResource reads a resource by URI.
func (s *Server) ReadResource(ctx context.Context, uri string) (string, error) {
	switch uri {
	case "relic://overview":
		return s.overview(ctx)
	case "relic://vocabulary":
		return vocabularyText(), nil
	default:
		return "", fmt.Errorf("unknown resource: %s", uri)
	}
}

// Run starts the MCP server with stdio transport.
func (s *Server) Run(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	if stdin == nil || stdout == nil {
		return fmt.Errorf("stdin and stdout must not be nil")
	}

	reader := bufio.NewReader(stdin)
	encoder := json.NewEncoder(stdout)
	// Note: Do NOT use SetIndent - MCP protocol requires compact JSON (one line per message)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := reader.ReadBytes('\n')
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		var req map[string]any
		if err := json.Unmarshal(line, &req); err != nil {
			continue
		}

		resp := s.handleRequest(ctx, req)
		if err := encoder.Encode(resp); err != nil {
			return err
		}
	}
}

func (s *Server) handleRequest(ctx context.Context, req map[string]any) map[string]any {
	method, _ := req["method"].(string)
	id := req["id"]

	switch method {
	case "initialize":
		return s.handleInitialize(id)
	case "tools/list":
		return s.handleToolsList(id)
	case "tools/call":
		return s.handleToolsCall(ctx, id, req)
	case "resources/list":
		return s.handleResourcesList(id)
	case "resources/read":
		return s.handleResourcesRead(ctx, id, req)
	default:
		return errorResponse(id, -32601, "Method not found: "+method)
	}
}

func (s *Server) handleInitialize(id any) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"protocolVersion": "2024-11-05",
			"serverInfo": map[string]any{
				"name":    "relic",
				"version": "0.1.0",
			},
			"capabilities": map[string]any{
				"tools": map[string]any{
					"listChanged": false,
				},
				"resources": map[string]any{
					"listChanged": false,
				},
			},
		},
	}
}

func (s *Server) handleToolsList(id any) map[string]any {
	tools := s.ListTools()
	toolList := make([]map[string]any, len(tools))
	for i, tool := range tools {
		schema, _ := json.Marshal(tool.InputSchema)
		var schemaMap map[string]any
		_ = json.Unmarshal(schema, &schemaMap)

		toolList[i] = map[string]any{
			"name":        tool.Name,
			"description": tool.Description,
			"inputSchema": schemaMap,
		}
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"tools": toolList,
		},
	}
}

func (s *Server) handleToolsCall(ctx context.Context, id any, req map[string]any) map[string]any {
	params, _ := req["params"].(map[string]any)
	if params == nil {
		return errorResponse(id, -32602, "Invalid params")
	}

	name, _ := params["name"].(string)
	args, _ := params["arguments"].(map[string]any)

	result, err := s.CallTool(ctx, name, args)
	if err != nil {
		return errorResponse(id, -32000, err.Error())
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"content": []map[string]any{
				{
					"type": "text",
					"text": result,
				},
			},
		},
	}
}

func (s *Server) handleResourcesList(id any) map[string]any {
	resources := s.ListResources()
	resourceList := make([]map[string]any, len(resources))
	for i, res := range resources {
		resourceList[i] = map[string]any{
			"uri":         res.URI,
			"name":        res.Name,
			"description": res.Description,
			"mimeType":    res.MimeType,
		}
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"resources": resourceList,
		},
	}
}

func (s *Server) handleResourcesRead(ctx context.Context, id any, req map[string]any) map[string]any {
	params, _ := req["params"].(map[string]any)
	if params == nil {
		return errorResponse(id, -32602, "Invalid params")
	}

	uri, _ := params["uri"].(string)

	content, err := s.ReadResource(ctx, uri)
	if err != nil {
		return errorResponse(id, -32000, err.Error())
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"contents": []map[string]any{
				{
					"uri":      uri,
					"mimeType": "text/plain",
					"text":     content,
				},
			},
		},
	}
}

// Tool Handlers

func (s *Server) handleListFiles(ctx context.Context, limit int) (string, error) {
	g, err := s.store.LoadGraph(ctx)
	if err != nil {
		return "", err
	}

	entities := g.Entities()
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Files (%d total)\n\n", len(entities)))

	for i, entity := range entities {
		if i >= limit {
			sb.WriteString(fmt.Sprintf("... and %d more\n", len(entities)-limit))
			break
		}
		sb.WriteString(fmt.Sprintf("- %s\n", firstValue(g, entity, graph.PredLabel)))
		sb.WriteString(fmt.Sprintf("  uid: %s\n", firstValue(g, entity, graph.PredIdentifier)))
		if path := firstValue(g, entity, graph.PropOriginalPath(g.Namespace())); path != "" {
			sb.WriteString(fmt.Sprintf("  path: %s\n", path))
		}
	}

	return sb.String(), nil
}

func (s *Server) handleAddRelation(ctx context.Context, d graph.Descriptor) (string, error) {
	g, err := s.store.LoadGraph(ctx)
	if err != nil {
		return "", err
	}

	added, err := graph.AddRelations(g, []graph.Descriptor{d})
	if err != nil {
		return "", err
	}

	if err := s.store.AddTriples(ctx, added); err != nil {
		return "", fmt.Errorf("persisting relation: %w", err)
	}

	if len(added) == 0 {
		return "Relation already present; nothing added.", nil
	}
	return fmt.Sprintf("Added %d statement(s): %s %s %s", len(added), d.SubjectUID, d.Predicate, d.ObjectUID), nil
}

func (s *Server) handleValidate(ctx context.Context) (string, error) {
	g, err := s.store.LoadGraph(ctx)
	if err != nil {
		return "", err
	}

	var shapes *validate.Shapes
	if s.cfg.Shapes != "" {
		shapes, err = validate.LoadShapes(s.cfg.Shapes)
		if err != nil {
			return "", err
		}
	}

	rep := validate.Run(g, shapes)
	return serialize.FormatReportText(rep), nil
}

func (s *Server) handleExport(ctx context.Context, format string) (string, error) {
	g, err := s.store.LoadGraph(ctx)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	switch format {
	case "ntriples":
		err = serialize.WriteNTriples(&sb, g)
	case "", "turtle":
		err = serialize.WriteTurtle(&sb, g)
	default:
		return "", fmt.Errorf("unknown format: %s (use turtle or ntriples)", format)
	}
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Resource content

func (s *Server) overview(ctx context.Context) (string, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("# Collection Overview\n\n")
	sb.WriteString(fmt.Sprintf("Namespace: %s\n", stats.Namespace))
	sb.WriteString(fmt.Sprintf("Entities: %d\n", stats.Entities))
	sb.WriteString(fmt.Sprintf("Relations: %d\n", stats.Relations))
	sb.WriteString(fmt.Sprintf("Triples: %d\n", stats.Triples))
	return sb.String(), nil
}

func vocabularyText() string {
	var sb strings.Builder
	sb.WriteString("# Relation Vocabulary\n\n")
	for _, name := range graph.PredicateNames() {
		sb.WriteString(fmt.Sprintf("- %s -> %s\n", name, graph.ResolvePredicate(name)))
	}
	sb.WriteString("\nAny other predicate is used as a full IRI unchanged.\n")
	return sb.String()
}

// Helper functions

func firstValue(g *graph.Graph, subject, predicate string) string {
	for _, obj := range g.Objects(subject, predicate) {
		if obj.Value != "" {
			return obj.Value
		}
	}
	return ""
}

func errorResponse(id any, code int, message string) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	}
}
