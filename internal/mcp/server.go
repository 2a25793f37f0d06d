// Package mcp exposes coda's file and edit operations to external agents
// over the Model Context Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/coda/internal/checkpoint"
	"github.com/joescharf/coda/internal/editblock"
	"github.com/joescharf/coda/internal/filectx"
	"github.com/joescharf/coda/internal/tools"
)

// Server wraps the coda file context, applier, and checkpoint store and
// exposes them as MCP tools.
type Server struct {
	files   *filectx.Provider
	applier *editblock.Applier
	store   checkpoint.Store
}

// NewServer creates the MCP server wrapper with all required dependencies.
// store may be nil; coda_list_threads then reports an error result.
func NewServer(files *filectx.Provider, applier *editblock.Applier, store checkpoint.Store) *Server {
	return &Server{
		files:   files,
		applier: applier,
		store:   store,
	}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("coda", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.readFileTool())
	srv.AddTool(s.listFilesTool())
	srv.AddTool(s.applyBlocksTool())
	srv.AddTool(s.listThreadsTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// coda_read_file
func (s *Server) readFileTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("coda_read_file",
		mcp.WithDescription("Read a file from the project. The path is relative to the project root."),
		mcp.WithString("path", mcp.Required(), mcp.Description("File path relative to the project root")),
	)
	return tool, s.handleReadFile
}

func (s *Server) handleReadFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: path"), nil
	}

	info, err := s.files.Resolve(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("resolve %s: %v", path, err)), nil
	}
	if !info.InProject {
		return mcp.NewToolResultError(fmt.Sprintf("file is outside the project root: %s", path)), nil
	}
	if !info.Exists {
		return mcp.NewToolResultError(fmt.Sprintf("file not found: %s", path)), nil
	}
	return mcp.NewToolResultText(info.Content), nil
}

// coda_list_files
func (s *Server) listFilesTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("coda_list_files",
		mcp.WithDescription("List files under a project directory, one path per line. Hidden directories and node_modules are skipped."),
		mcp.WithString("dir", mcp.Description("Directory relative to the project root (default: the root)")),
	)
	return tool, s.handleListFiles
}

func (s *Server) handleListFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir := request.GetString("dir", "")

	lister := &tools.ListFiles{Files: s.files}
	args, _ := json.Marshal(map[string]string{"dir": dir})
	out, err := lister.Invoke(ctx, args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list files: %v", err)), nil
	}
	return mcp.NewToolResultText(out), nil
}

// coda_apply_blocks
func (s *Server) applyBlocksTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("coda_apply_blocks",
		mcp.WithDescription("Parse search/replace edit blocks from text and apply them to the project. Returns a JSON array with per-block status."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text containing fenced edit blocks")),
	)
	return tool, s.handleApplyBlocks
}

type blockOut struct {
	Kind    string `json:"kind"`
	Target  string `json:"target"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (s *Server) handleApplyBlocks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}

	blocks, err := editblock.ParseRequired(text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("parse blocks: %v", err)), nil
	}

	applied := s.applier.ApplyAll(ctx, blocks)
	out := make([]blockOut, 0, len(applied))
	for _, b := range applied {
		switch blk := b.(type) {
		case *editblock.SearchReplaceBlock:
			out = append(out, blockOut{
				Kind:    "edit",
				Target:  blk.FilePath,
				Status:  string(blk.Status),
				Message: blk.StatusMessage,
			})
		case *editblock.ShellCommandBlock:
			out = append(out, blockOut{
				Kind:    "shell",
				Target:  strings.Join(blk.Commands, "; "),
				Status:  string(blk.Status),
				Message: blk.StatusMessage,
			})
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal block results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// coda_list_threads
func (s *Server) listThreadsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("coda_list_threads",
		mcp.WithDescription("List stored conversation threads as JSON, most recently updated first."),
	)
	return tool, s.handleListThreads
}

func (s *Server) handleListThreads(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.store == nil {
		return mcp.NewToolResultError("no checkpoint store configured"), nil
	}

	threads, err := s.store.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list threads: %v", err)), nil
	}

	type threadOut struct {
		ID        string `json:"id"`
		Messages  int    `json:"messages"`
		UpdatedAt string `json:"updated_at"`
	}
	out := make([]threadOut, len(threads))
	for i, t := range threads {
		out[i] = threadOut{
			ID:        t.ID,
			Messages:  t.MessageCount,
			UpdatedAt: t.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal threads: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
