// Package lsp serves asm65 diagnostics and completions over the language
// server protocol.
package lsp

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/asm65/workspace"
)

const lsName = "asm65"

var log = commonlog.GetLogger("asm65.lsp")

type Server struct {
	workspace *workspace.Workspace
	handler   protocol.Handler
	server    *server.Server
	version   string
}

func NewServer(version string) *Server {
	ls := &Server{
		version: version,
	}

	ls.handler = protocol.Handler{
		Initialize:             ls.initialize,
		Initialized:            ls.initialized,
		Shutdown:               ls.shutdown,
		SetTrace:               ls.setTrace,
		TextDocumentDidOpen:    ls.textDocumentDidOpen,
		TextDocumentDidChange:  ls.textDocumentDidChange,
		TextDocumentDidClose:   ls.textDocumentDidClose,
		TextDocumentDidSave:    ls.textDocumentDidSave,
		TextDocumentCompletion: ls.textDocumentCompletion,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	ls.workspace = workspace.New(rootDir)
	log.Infof("workspace root %s", rootDir)

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    intPtr(int(protocol.TextDocumentSyncKindFull)),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	if err := ls.workspace.ScanAll(); err != nil {
		log.Warningf("scan %s: %s", ls.workspace.RootDir(), err)
	}
	return nil
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	f := ls.workspace.UpdateFile(path, []byte(params.TextDocument.Text))
	ls.publish(ctx, params.TextDocument.URI, f)
	return nil
}

func (ls *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			f := ls.workspace.UpdateFile(path, []byte(textChange.Text))
			ls.publish(ctx, params.TextDocument.URI, f)
		}
	}
	return nil
}

func (ls *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if err := ls.workspace.ScanFile(path); err != nil {
		ls.workspace.RemoveFile(path)
	}
	ls.publish(ctx, params.TextDocument.URI, nil)
	return nil
}

func (ls *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if params.Text != nil {
		ls.workspace.UpdateFile(path, []byte(*params.Text))
	} else if err := ls.workspace.ScanFile(path); err != nil {
		return nil
	}
	ls.publish(ctx, params.TextDocument.URI, ls.workspace.GetFile(path))
	return nil
}

func (ls *Server) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}

	file := ls.workspace.GetFile(path)
	if file == nil {
		return nil, nil
	}

	items := Complete(ls.workspace, file.Content, int(params.Position.Line), int(params.Position.Character))
	if len(items) == 0 {
		return nil, nil
	}
	return items, nil
}

func (ls *Server) publish(ctx *glsp.Context, uri protocol.DocumentUri, f *workspace.File) {
	diagnostics, err := Diagnostics(f)
	if err != nil {
		log.Warningf("%s: %s", uri, err)
		return
	}
	ctx.Notify(string(protocol.ServerTextDocumentPublishDiagnostics), protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func intPtr(i int) *protocol.TextDocumentSyncKind {
	v := protocol.TextDocumentSyncKind(i)
	return &v
}
