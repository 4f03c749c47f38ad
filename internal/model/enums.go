package model

// Status is the progress state shared by jobs and their steps.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Playback is the control mode governing whether scheduled advancement proceeds.
type Playback string

const (
	PlaybackPlay  Playback = "play"
	PlaybackPause Playback = "pause"
	PlaybackStop  Playback = "stop"
)

// Device status
type DeviceStatus string

const (
	DeviceOnline  DeviceStatus = "online"
	DeviceOffline DeviceStatus = "offline"
)

// DeviceIdle is the currentJob value of a device with no assignment.
const DeviceIdle = "idle"

// JobEventType names a transition observed by subscribers.
type JobEventType string

const (
	JobEventCreated   JobEventType = "created"
	JobEventAdvanced  JobEventType = "advanced"
	JobEventCompleted JobEventType = "completed"
	JobEventPaused    JobEventType = "paused"
	JobEventResumed   JobEventType = "resumed"
	JobEventStopped   JobEventType = "stopped"
	JobEventRestarted JobEventType = "restarted"
)
