// Package orchestrator runs the build, install and launch cycle as an
// explicit state machine.
//
// Stages and the events they emit are enumerated in machine.go; the loop in
// RunBuildCycle only looks up the next stage. Every collaborator is passed in
// through Deps, so the cycle can be driven entirely by fakes in tests.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/droidloop/droidloop/internal/build"
	"github.com/droidloop/droidloop/internal/device"
	"github.com/droidloop/droidloop/internal/install"
	"github.com/droidloop/droidloop/internal/prompt"
)

// Builder builds a variant.
type Builder interface {
	Build(ctx context.Context, variant string) (*build.Result, error)
}

// Provisioner makes sure a Ready device exists.
type Provisioner interface {
	EnsureDevice(ctx context.Context) (*device.ProvisionResult, error)
}

// Recoverer attempts one recovery from a classified install failure.
type Recoverer interface {
	Recover(ctx context.Context, f install.Failure, dev device.Device, packageID, artifactPath string) error
}

// Preferences remembers choices across sessions.
type Preferences interface {
	DefaultVariant() string
	SelectedDevice() string
	SaveVariant(v string) error
	SaveDevice(id string) error
}

// LogOpener shows a device's logs to the user.
type LogOpener interface {
	OpenLogs(ctx context.Context, dev device.Device, packageID string) error
}

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	// Variants is the project's declared variant set.
	Variants []string

	// PackageID is the application id used when the build output does not
	// declare one.
	PackageID string

	Registry    device.Registry
	Bridge      device.Bridge
	Builder     Builder
	Provisioner Provisioner
	Recoverer   Recoverer

	// Classify maps installer output to a failure kind. Defaults to
	// install.Classify.
	Classify func(string) install.Classification

	Prompter    prompt.Prompter
	Preferences Preferences

	// LogOpener is optional; without it "Open logs" reports that logs are
	// unavailable.
	LogOpener LogOpener

	// Tracer defaults to a no-op tracer.
	Tracer trace.Tracer

	Logger *log.Logger
}

// Orchestrator runs build cycles and retryable tasks.
type Orchestrator struct {
	deps Deps
}

// New creates an Orchestrator, filling in defaults for optional Deps.
func New(deps Deps) *Orchestrator {
	if deps.Classify == nil {
		deps.Classify = install.Classify
	}
	if deps.Tracer == nil {
		deps.Tracer = noop.NewTracerProvider().Tracer("droidloop")
	}
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	if deps.Prompter == nil {
		deps.Prompter = prompt.NonInteractive{}
	}
	return &Orchestrator{deps: deps}
}

// RunBuildCycle runs variant selection, device acquisition, build, install,
// launch and, in keep-alive sessions, the post-build menu until the session
// ends.
//
// Parameters:
//   - ctx: Context for cancellation; cancelling ends the session gracefully
//   - opts: Explicit variant, device and keep-alive choice
//
// Returns:
//   - *Result: The outcome; never nil
func (o *Orchestrator) RunBuildCycle(ctx context.Context, opts CycleOptions) *Result {
	s := newSession(opts, o.deps.Prompter.Interactive())
	logger := o.deps.Logger.With("session", s.ID)
	logger.Debug("Starting build cycle", "variant", opts.Variant, "device", opts.DeviceID, "keep_alive", s.KeepAlive)

	ctx, span := o.deps.Tracer.Start(ctx, "droidloop.build_cycle",
		trace.WithAttributes(
			attribute.String("session.id", s.ID),
			attribute.Bool("session.keep_alive", s.KeepAlive),
		))
	defer span.End()

	stage := StageSelectVariant
	for stage != StageDone {
		event := o.runStage(ctx, s, stage)
		if event == EventCancelled {
			s.cancelled = true
		}

		to, ok := next(stage, event)
		if !ok {
			s.err = fmt.Errorf("%w from %s on %s", ErrNoTransition, stage, event)
			logger.Error("Invalid transition", "stage", stage, "event", event)
			break
		}
		logger.Debug("Transition", "from", stage, "event", event, "to", to)
		stage = to
	}

	res := s.result()
	switch {
	case res.Cancelled:
		span.SetAttributes(attribute.Bool("session.cancelled", true))
	case res.Err != nil:
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
	default:
		span.SetStatus(codes.Ok, "")
	}
	logger.Debug("Build cycle finished", "success", res.Success, "cancelled", res.Cancelled, "builds", res.Builds)
	return res
}

// runStage runs one stage inside its own span.
func (o *Orchestrator) runStage(ctx context.Context, s *Session, stage Stage) Event {
	ctx, span := o.deps.Tracer.Start(ctx, "droidloop.stage."+stage.String(),
		trace.WithAttributes(
			attribute.String("session.id", s.ID),
			attribute.String("variant", s.Variant),
			attribute.String("device.id", s.DeviceID),
		))
	defer span.End()

	var event Event
	switch stage {
	case StageSelectVariant:
		event = o.selectVariant(ctx, s)
	case StageAcquireDevice:
		event = o.acquireDevice(ctx, s)
	case StageBuild:
		event = o.build(ctx, s)
	case StageInstall:
		event = o.install(ctx, s)
	case StageInstallRecovery:
		event = o.recoverInstall(ctx, s)
	case StageLaunch:
		event = o.launch(ctx, s)
	case StagePostOutcome:
		event = o.postOutcome(ctx, s)
	default:
		s.err = fmt.Errorf("unknown stage %d", stage)
		event = EventFailed
	}

	span.SetAttributes(attribute.String("event", event.String()))
	if event == EventOK {
		delete(s.Retries, stage)
	}
	if event == EventFailed && s.err != nil {
		span.SetStatus(codes.Error, s.err.Error())
	}
	return event
}

// cancelled reports whether err, or the context, ends the session as a user
// cancellation.
func cancelled(ctx context.Context, err error) bool {
	return prompt.IsCancelled(err) || errors.Is(ctx.Err(), context.Canceled)
}
