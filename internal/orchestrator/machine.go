package orchestrator

// Stage is a state of the build cycle.
type Stage int

const (
	StageSelectVariant Stage = iota
	StageAcquireDevice
	StageBuild
	StageInstall
	StageInstallRecovery
	StageLaunch
	StagePostOutcome
	StageDone
)

var stageNames = map[Stage]string{
	StageSelectVariant:   "select_variant",
	StageAcquireDevice:   "acquire_device",
	StageBuild:           "build",
	StageInstall:         "install",
	StageInstallRecovery: "install_recovery",
	StageLaunch:          "launch",
	StagePostOutcome:     "post_outcome",
	StageDone:            "done",
}

// String returns the stage name used in logs and spans.
func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// Event is the outcome of running a stage.
type Event int

const (
	EventOK Event = iota
	EventFailed
	EventRetry
	EventReturnToMenu
	EventRebuild
	EventSwitchDevice
	EventDeviceSwitched
	EventOpenLogs
	EventCancelled
)

var eventNames = map[Event]string{
	EventOK:             "ok",
	EventFailed:         "failed",
	EventRetry:          "retry",
	EventReturnToMenu:   "return_to_menu",
	EventRebuild:        "rebuild",
	EventSwitchDevice:   "switch_device",
	EventDeviceSwitched: "device_switched",
	EventOpenLogs:       "open_logs",
	EventCancelled:      "cancelled",
}

// String returns the event name used in logs.
func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return "unknown"
}

// transitions is the complete state machine. A (stage, event) pair missing
// from the table is a bug in the stage handler.
var transitions = map[Stage]map[Event]Stage{
	StageSelectVariant: {
		EventOK:        StageAcquireDevice,
		EventFailed:    StageDone,
		EventCancelled: StageDone,
	},
	StageAcquireDevice: {
		EventOK:             StageBuild,
		EventDeviceSwitched: StagePostOutcome,
		EventFailed:         StageDone,
		EventCancelled:      StageDone,
	},
	StageBuild: {
		EventOK:           StageInstall,
		EventRetry:        StageBuild,
		EventFailed:       StageDone,
		EventReturnToMenu: StageDone,
		EventCancelled:    StageDone,
	},
	StageInstall: {
		EventOK:        StageLaunch,
		EventFailed:    StageInstallRecovery,
		EventCancelled: StageDone,
	},
	StageInstallRecovery: {
		EventOK:           StageLaunch,
		EventRetry:        StageBuild,
		EventFailed:       StageDone,
		EventReturnToMenu: StageDone,
		EventCancelled:    StageDone,
	},
	StageLaunch: {
		EventOK:        StagePostOutcome,
		EventCancelled: StageDone,
	},
	StagePostOutcome: {
		EventOK:           StageDone,
		EventOpenLogs:     StagePostOutcome,
		EventRebuild:      StageBuild,
		EventSwitchDevice: StageAcquireDevice,
		EventReturnToMenu: StageDone,
		EventFailed:       StageDone,
		EventCancelled:    StageDone,
	},
}

// next returns the stage that follows stage on event.
func next(stage Stage, event Event) (Stage, bool) {
	to, ok := transitions[stage][event]
	return to, ok
}
