package config

const (
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
	defaultScheme      = "usegeo"
	defaultDepthSuffix = "_depth.npy"
)

var (
	defaultImageExtensions = []string{".jpg", ".jpeg", ".png"}
	defaultLogOutputs      = []string{"stderr"}
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	exts := make([]string, len(defaultImageExtensions))
	copy(exts, defaultImageExtensions)
	return Config{
		Logging: Logging{
			Format:      defaultLogFormat,
			Level:       defaultLogLevel,
			OutputPaths: append([]string(nil), defaultLogOutputs...),
		},
		Correlator: Correlator{
			Scheme:          defaultScheme,
			ImageExtensions: exts,
			DepthSuffix:     defaultDepthSuffix,
		},
	}
}
