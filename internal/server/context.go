// Package server holds the shared state of the MCP server: the credential
// store, lazily created Workspace API clients, and the dedicated metrics
// listener.
package server

import (
	"context"
	"log/slog"
	"sync"

	"workspacemcp/internal/calendar"
	"workspacemcp/internal/docs"
	"workspacemcp/internal/drive"
	"workspacemcp/internal/google"
	"workspacemcp/internal/instrumentation"
	"workspacemcp/internal/sheets"
)

// ServerContext is passed to every tool handler. API clients are created on
// first use and cached; creation fails with google.ErrNotAuthorized until
// the authorization flow has run.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	store   *google.Store
	logger  *slog.Logger
	metrics *instrumentation.Metrics
	audit   *instrumentation.AuditLogger

	mu             sync.Mutex
	docsClient     *docs.Client
	sheetsClient   *sheets.Client
	driveClient    *drive.Client
	calendarClient *calendar.Client
	activeFlow     *google.Flow
}

// NewServerContext creates the shared server state.
func NewServerContext(ctx context.Context, store *google.Store, logger *slog.Logger, metrics *instrumentation.Metrics, audit *instrumentation.AuditLogger) *ServerContext {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		store:   store,
		logger:  logger,
		metrics: metrics,
		audit:   audit,
	}
}

// Context returns the server's lifetime context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Store returns the credential store.
func (sc *ServerContext) Store() *google.Store {
	return sc.store
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Metrics returns the metrics recorder.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// Audit returns the audit logger, which may be nil.
func (sc *ServerContext) Audit() *instrumentation.AuditLogger {
	return sc.audit
}

// DocsClient returns the cached Docs client, creating it on first use.
func (sc *ServerContext) DocsClient() (*docs.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.docsClient != nil {
		return sc.docsClient, nil
	}
	client, err := docs.NewClient(sc.ctx, sc.store)
	if err != nil {
		return nil, err
	}
	sc.docsClient = client
	return client, nil
}

// SheetsClient returns the cached Sheets client, creating it on first use.
func (sc *ServerContext) SheetsClient() (*sheets.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.sheetsClient != nil {
		return sc.sheetsClient, nil
	}
	client, err := sheets.NewClient(sc.ctx, sc.store)
	if err != nil {
		return nil, err
	}
	sc.sheetsClient = client
	return client, nil
}

// DriveClient returns the cached Drive client, creating it on first use.
func (sc *ServerContext) DriveClient() (*drive.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.driveClient != nil {
		return sc.driveClient, nil
	}
	client, err := drive.NewClient(sc.ctx, sc.store)
	if err != nil {
		return nil, err
	}
	sc.driveClient = client
	return client, nil
}

// CalendarClient returns the cached Calendar client, creating it on first
// use.
func (sc *ServerContext) CalendarClient() (*calendar.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.calendarClient != nil {
		return sc.calendarClient, nil
	}
	client, err := calendar.NewClient(sc.ctx, sc.store)
	if err != nil {
		return nil, err
	}
	sc.calendarClient = client
	return client, nil
}

// StartAuthFlow starts an authorization flow, or returns the one already in
// progress so repeated tool calls reuse the same consent URL. The second
// return value reports whether a new flow was started; a new flow's terminal
// result must be consumed from Done and handed to FinishAuthFlow.
func (sc *ServerContext) StartAuthFlow() (*google.Flow, bool, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.activeFlow != nil {
		return sc.activeFlow, false, nil
	}

	flow, err := google.StartFlow(sc.ctx, sc.store, sc.logger)
	if err != nil {
		return nil, false, err
	}
	sc.activeFlow = flow
	return flow, true, nil
}

// FinishAuthFlow clears the active flow after its watcher observed the
// terminal result.
func (sc *ServerContext) FinishAuthFlow(flow *google.Flow) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.activeFlow == flow {
		sc.activeFlow = nil
	}
}

// Shutdown cancels the server context and tears down any in-flight
// authorization flow.
func (sc *ServerContext) Shutdown() {
	sc.mu.Lock()
	flow := sc.activeFlow
	sc.activeFlow = nil
	sc.mu.Unlock()

	if flow != nil {
		flow.Close()
	}
	sc.cancel()
}
