package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./accesslearn.db"
)

// Speech backend names accepted by SPEECH_BACKEND.
const (
	SpeechBackendBrowser = "browser"
	SpeechBackendExec    = "exec"
	SpeechBackendNATS    = "nats"
	SpeechBackendNone    = "none"
)

// DefaultDeviceCookieName identifies the browser profile that owns a preference set.
const DefaultDeviceCookieName = "accesslearn_device"
