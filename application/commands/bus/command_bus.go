package bus

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"ahkneemay/pkg/observability"

	"go.uber.org/zap"
)

// Command represents a command that changes state
type Command interface {
	Validate() error
}

// CommandHandler handles a specific command type and reports the outcome as
// a user-facing message
type CommandHandler interface {
	Handle(ctx context.Context, cmd Command) (string, error)
}

// CommandHandlerFunc is an adapter to allow functions to be used as handlers
type CommandHandlerFunc func(ctx context.Context, cmd Command) (string, error)

// Handle implements CommandHandler
func (f CommandHandlerFunc) Handle(ctx context.Context, cmd Command) (string, error) {
	return f(ctx, cmd)
}

// HandlerFor adapts a handler written for one concrete command type
func HandlerFor[C Command](handle func(context.Context, C) (string, error)) CommandHandler {
	return CommandHandlerFunc(func(ctx context.Context, cmd Command) (string, error) {
		typed, ok := cmd.(C)
		if !ok {
			return "", fmt.Errorf("invalid command type %T", cmd)
		}
		return handle(ctx, typed)
	})
}

// Middleware defines command middleware
type Middleware func(next CommandHandler) CommandHandler

// Errors
var (
	ErrHandlerNotFound = errors.New("command handler not found")
)

// CommandBus dispatches commands to their handlers
type CommandBus struct {
	handlers    map[reflect.Type]CommandHandler
	middlewares []Middleware
	mu          sync.RWMutex
}

// NewCommandBus creates a new command bus
func NewCommandBus(middlewares ...Middleware) *CommandBus {
	return &CommandBus{
		handlers:    make(map[reflect.Type]CommandHandler),
		middlewares: middlewares,
	}
}

// Use appends middleware. It applies to handlers dispatched afterwards.
func (b *CommandBus) Use(middlewares ...Middleware) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.middlewares = append(b.middlewares, middlewares...)
}

// Register registers a handler for a command type
func (b *CommandBus) Register(cmdType Command, handler CommandHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(cmdType)
	if _, exists := b.handlers[t]; exists {
		return fmt.Errorf("handler already registered for command type %s", CommandName(cmdType))
	}

	b.handlers[t] = handler
	return nil
}

// Send validates cmd and dispatches it. It returns either the success
// message or an error, never both.
func (b *CommandBus) Send(ctx context.Context, cmd Command) (string, error) {
	if err := cmd.Validate(); err != nil {
		return "", err
	}

	b.mu.RLock()
	handler, exists := b.handlers[reflect.TypeOf(cmd)]
	middlewares := b.middlewares
	b.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("%w: %s", ErrHandlerNotFound, CommandName(cmd))
	}

	// Apply middleware in reverse order so the first one runs outermost
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}

	msg, err := handler.Handle(ctx, cmd)
	if err != nil {
		return "", err
	}
	return msg, nil
}

// CommandName returns the type name of cmd
func CommandName(cmd Command) string {
	t := reflect.TypeOf(cmd)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// LoggingMiddleware logs command execution
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) (string, error) {
			name := CommandName(cmd)
			start := time.Now()

			msg, err := next.Handle(ctx, cmd)
			if err != nil {
				logger.Warn("Command failed",
					zap.String("command", name),
					zap.Duration("duration", time.Since(start)),
					zap.Error(err),
				)
			} else {
				logger.Debug("Command succeeded",
					zap.String("command", name),
					zap.Duration("duration", time.Since(start)),
				)
			}
			return msg, err
		})
	}
}

// TracingMiddleware runs each command inside a subsegment
func TracingMiddleware(tracer *observability.Tracer) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) (string, error) {
			var msg string
			err := tracer.Trace(ctx, CommandName(cmd), func(ctx context.Context) error {
				var err error
				msg, err = next.Handle(ctx, cmd)
				return err
			})
			return msg, err
		})
	}
}

// MetricsMiddleware records CommandExecution and CommandCount
func MetricsMiddleware(metrics *observability.Metrics) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) (string, error) {
			start := time.Now()
			msg, err := next.Handle(ctx, cmd)
			metrics.RecordExecution(ctx, "Command", CommandName(cmd), time.Since(start), err)
			return msg, err
		})
	}
}
