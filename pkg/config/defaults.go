package config

const (
	defaultClientTarget = "http://localhost:5174"

	defaultChatMode     = "quick"
	defaultChatNResults = 4

	defaultStubListen = ":5174"

	defaultUploadWorkers = 4
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Client: ClientConfig{
			Target: defaultClientTarget,
		},
		Chat: ChatConfig{
			Mode:     defaultChatMode,
			NResults: defaultChatNResults,
		},
		Stub: StubConfig{
			Listen: defaultStubListen,
		},
		Upload: UploadConfig{
			Workers: defaultUploadWorkers,
		},
	}
}
