package version

const (
	VERSION        = "v0.1.0"
	UPDATE_MESSAGE = "Newer versions may add keys and actions; profiles from older versions keep working."
)
