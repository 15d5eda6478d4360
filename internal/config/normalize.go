package config

import "strings"

func (c *Config) normalize() {
	c.normalizeLogging()
	c.normalizeCorrelator()
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	outputs := make([]string, 0, len(c.Logging.OutputPaths))
	for _, path := range c.Logging.OutputPaths {
		if path = strings.TrimSpace(path); path != "" {
			outputs = append(outputs, path)
		}
	}
	if len(outputs) == 0 {
		outputs = append(outputs, defaultLogOutputs...)
	}
	c.Logging.OutputPaths = outputs
}

func (c *Config) normalizeCorrelator() {
	c.Correlator.Scheme = strings.ToLower(strings.TrimSpace(c.Correlator.Scheme))
	if c.Correlator.Scheme == "" {
		c.Correlator.Scheme = defaultScheme
	}
	if strings.TrimSpace(c.Correlator.DepthSuffix) == "" {
		c.Correlator.DepthSuffix = defaultDepthSuffix
	}
	c.Correlator.ImageExtensions = NormalizeExtensions(c.Correlator.ImageExtensions)
	if len(c.Correlator.ImageExtensions) == 0 {
		c.Correlator.ImageExtensions = append([]string(nil), defaultImageExtensions...)
	}
}

// NormalizeExtensions lower-cases extensions, adds a leading dot where
// missing, and drops blanks and duplicates while keeping order.
func NormalizeExtensions(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		ext := strings.ToLower(strings.TrimSpace(value))
		if ext == "" || ext == "." {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out
}
