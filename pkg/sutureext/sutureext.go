// Package sutureext wires suture supervisors into slog.
package sutureext

import (
	"context"
	"errors"
	"log/slog"

	"github.com/thejerf/suture/v4"
)

func New(name string) *suture.Supervisor {
	return suture.New(name, suture.Spec{
		EventHook: EventHook(),
	})
}

func EventHook() suture.EventHook {
	return func(ei suture.Event) {
		switch e := ei.(type) {
		case suture.EventStopTimeout:
			slog.Warn("Service failed to terminate in a timely manner", "supervisor", e.SupervisorName, "service", e.ServiceName)
		case suture.EventServicePanic:
			slog.Error("Caught a service panic", "supervisor", e.SupervisorName, "service", e.ServiceName, "panic", e.PanicMsg)
			slog.Debug(e.Stacktrace)
		case suture.EventServiceTerminate:
			if e.Restarting {
				slog.Error("Service failed", "supervisor", e.SupervisorName, "service", e.ServiceName, "error", e.Err)
			} else {
				slog.Debug("Service stopped", "supervisor", e.SupervisorName, "service", e.ServiceName, "error", e.Err)
			}
		case suture.EventBackoff:
			slog.Debug("Too many service failures, entering the backoff state", "supervisor", e.SupervisorName)
		case suture.EventResume:
			slog.Debug("Exiting backoff state", "supervisor", e.SupervisorName)
		default:
			slog.Warn("Unknown suture supervisor event", "type", int(e.Type()), "event", e.String())
		}
	}
}

// Service forces the use of the String method.
type Service interface {
	String() string
	suture.Service
}

func Add(super *suture.Supervisor, service Service) suture.ServiceToken {
	return super.Add(sanitizeService{Service: service})
}

type sanitizeService struct {
	Service
}

func (s sanitizeService) Serve(ctx context.Context) error {
	return SanitizeError(ctx, s.Service.Serve(ctx))
}

// SanitizeError keeps a service error from being read as a context error
// unless ctx is done, since suture stops restarting services that return
// context errors.
func SanitizeError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return err
	}

	var errs []error
	if errors.Is(err, suture.ErrDoNotRestart) {
		errs = append(errs, suture.ErrDoNotRestart)
	}
	if errors.Is(err, suture.ErrTerminateSupervisorTree) {
		errs = append(errs, suture.ErrTerminateSupervisorTree)
	}
	errs = append(errs, errors.New(err.Error()))

	return errors.Join(errs...)
}
