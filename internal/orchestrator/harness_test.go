package orchestrator

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/droidloop/droidloop/internal/build"
	"github.com/droidloop/droidloop/internal/device"
	"github.com/droidloop/droidloop/internal/device/devicetest"
	"github.com/droidloop/droidloop/internal/install"
	"github.com/droidloop/droidloop/internal/prompt"
	"github.com/droidloop/droidloop/internal/prompt/prompttest"
	"github.com/droidloop/droidloop/internal/ui"
)

func init() {
	ui.SetOutput(io.Discard)
}

const testPackage = "com.example.app"

// fakeBuilder returns scripted errors, then successes.
type fakeBuilder struct {
	errs     []error
	variants []string
}

func (b *fakeBuilder) Build(ctx context.Context, variant string) (*build.Result, error) {
	b.variants = append(b.variants, variant)
	if len(b.errs) > 0 {
		err := b.errs[0]
		b.errs = b.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &build.Result{Variant: variant, ArtifactPath: "/out/app-" + variant + ".apk"}, nil
}

type staticProvisioner struct {
	res *device.ProvisionResult
	err error
}

func (p staticProvisioner) EnsureDevice(ctx context.Context) (*device.ProvisionResult, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.res == nil {
		return &device.ProvisionResult{}, nil
	}
	return p.res, nil
}

// memPrefs is an in-memory Preferences.
type memPrefs struct {
	mu      sync.Mutex
	variant string
	device  string
	saves   []string
}

func (p *memPrefs) DefaultVariant() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.variant
}

func (p *memPrefs) SelectedDevice() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.device
}

func (p *memPrefs) SaveVariant(v string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.variant = v
	p.saves = append(p.saves, "variant="+v)
	return nil
}

func (p *memPrefs) SaveDevice(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.device = id
	p.saves = append(p.saves, "device="+id)
	return nil
}

type fakeLogOpener struct {
	opened []string
	err    error
}

func (l *fakeLogOpener) OpenLogs(ctx context.Context, dev device.Device, packageID string) error {
	l.opened = append(l.opened, dev.ID+" "+packageID)
	return l.err
}

type harness struct {
	reg           *devicetest.Registry
	bridge        *devicetest.Bridge
	builder       *fakeBuilder
	prompter      prompt.Prompter
	scripted      *prompttest.Scripted
	prefs         *memPrefs
	logs          *fakeLogOpener
	provisioner   Provisioner
	variants      []string
	classifyCalls int
}

func newHarness(answers ...prompttest.Answer) *harness {
	scripted := prompttest.New(answers...)
	return &harness{
		reg:         devicetest.NewRegistry(devicetest.Emulator("emulator-5554")),
		bridge:      &devicetest.Bridge{},
		builder:     &fakeBuilder{},
		prompter:    scripted,
		scripted:    scripted,
		prefs:       &memPrefs{},
		logs:        &fakeLogOpener{},
		provisioner: staticProvisioner{},
		variants:    []string{"debug", "release"},
	}
}

func (h *harness) orchestrator() *Orchestrator {
	logger := log.New(io.Discard)
	return New(Deps{
		Variants:    h.variants,
		PackageID:   testPackage,
		Registry:    h.reg,
		Bridge:      h.bridge,
		Builder:     h.builder,
		Provisioner: h.provisioner,
		Recoverer:   install.NewCoordinator(h.bridge, h.prompter, logger),
		Classify: func(raw string) install.Classification {
			h.classifyCalls++
			return install.Classify(raw)
		},
		Prompter:    h.prompter,
		Preferences: h.prefs,
		LogOpener:   h.logs,
		Logger:      logger,
	})
}

func (h *harness) run(opts CycleOptions) *Result {
	return h.orchestrator().RunBuildCycle(context.Background(), opts)
}

// prompts returns the messages of every prompt shown.
func (h *harness) prompts() []string {
	if h.scripted == nil {
		return nil
	}
	var out []string
	for _, c := range h.scripted.Calls() {
		out = append(out, c.Message)
	}
	return out
}

var errBoom = errors.New("boom")
