package orchestrator

import (
	"github.com/google/uuid"

	"github.com/droidloop/droidloop/internal/build"
	"github.com/droidloop/droidloop/internal/device"
	"github.com/droidloop/droidloop/internal/install"
)

// CycleOptions are the caller's choices for one RunBuildCycle.
type CycleOptions struct {
	// Variant skips variant selection when set. It must be declared.
	Variant string

	// DeviceID selects the target directly. The device must be Ready. It is
	// not remembered for later sessions.
	DeviceID string

	// KeepAlive keeps the session interactive across build cycles. It only
	// takes effect with an interactive prompter.
	KeepAlive bool
}

// Session is the state of one RunBuildCycle. It survives Retry and Rebuild
// and is discarded when the cycle returns.
type Session struct {
	// ID identifies the session in logs and spans.
	ID string

	Variant     string
	DeviceID    string
	KeepAlive   bool
	Interactive bool

	// Retries counts retries per stage since that stage last succeeded.
	Retries map[Stage]int

	opts      CycleOptions
	device    device.Device
	artifact  *build.Result
	failure   install.Failure
	switching bool
	launched  bool
	builds    int
	cancelled bool
	err       error
	warnings  []string
}

func newSession(opts CycleOptions, interactive bool) *Session {
	return &Session{
		ID:          uuid.NewString(),
		KeepAlive:   opts.KeepAlive && interactive,
		Interactive: interactive,
		Retries:     make(map[Stage]int),
		opts:        opts,
	}
}

func (s *Session) warn(msg string) {
	s.warnings = append(s.warnings, msg)
}

// Result is the outcome of RunBuildCycle.
type Result struct {
	SessionID string

	// Success is set when the last cycle built, installed and launched
	// (launch failures are warnings) and the session was not cancelled.
	Success bool

	// Cancelled is set when the user interrupted the session. Err is nil
	// in that case.
	Cancelled bool

	// Err is the terminal failure, already reported to the user.
	Err error

	// Warnings are soft failures such as a failed launch.
	Warnings []string

	Variant       string
	DeviceID      string
	ArtifactPath  string
	ApplicationID string

	// Builds counts build attempts in the session.
	Builds int
}

func (s *Session) result() *Result {
	r := &Result{
		SessionID: s.ID,
		Cancelled: s.cancelled,
		Warnings:  s.warnings,
		Variant:   s.Variant,
		DeviceID:  s.DeviceID,
		Builds:    s.builds,
	}
	if s.artifact != nil {
		r.ArtifactPath = s.artifact.ArtifactPath
		r.ApplicationID = s.artifact.ApplicationID
	}
	if s.cancelled {
		return r
	}
	r.Err = s.err
	r.Success = s.err == nil && s.launched
	return r
}
