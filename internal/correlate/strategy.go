package correlate

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Strategy maps an image filename onto its correlates.
type Strategy interface {
	Name() string
	// OrientationKey returns the orientation label for imageName.
	OrientationKey(imageName string) string
	// DepthName returns the depth-map filename for imageName.
	DepthName(imageName string) string
}

// UseGeo handles "<stem>_res.<ext>" images whose orientation label is the
// name without "_res" and whose depth map is "<stem>_depth_res.npy".
type UseGeo struct{}

func (UseGeo) Name() string { return "usegeo" }

func (UseGeo) OrientationKey(imageName string) string {
	return strings.ReplaceAll(imageName, "_res", "")
}

// DepthName rewrites JPEG names only; other extensions pass through
// unchanged and are expected to fail the existence check.
func (UseGeo) DepthName(imageName string) string {
	name := strings.ReplaceAll(imageName, "_res.jpg", "_depth_res.npy")
	return strings.ReplaceAll(name, "_res.jpeg", "_depth_res.npy")
}

// Stem uses the image filename as the orientation label and looks for a
// depth map named after the image stem plus DepthSuffix.
type Stem struct {
	DepthSuffix string
}

func (Stem) Name() string { return "stem" }

func (Stem) OrientationKey(imageName string) string { return imageName }

func (s Stem) DepthName(imageName string) string {
	return strings.TrimSuffix(imageName, filepath.Ext(imageName)) + s.DepthSuffix
}

// ValidateDepthSuffix rejects suffixes that would resolve depth maps
// outside the depth directory.
func ValidateDepthSuffix(suffix string) error {
	if suffix == "" {
		return errors.New("depth suffix must not be empty")
	}
	if strings.ContainsAny(suffix, `/\`) || strings.ContainsRune(suffix, filepath.Separator) {
		return fmt.Errorf("depth suffix must not contain path separators: %q", suffix)
	}
	return nil
}

var builtins = map[string]func(depthSuffix string) (Strategy, error){
	"usegeo": func(string) (Strategy, error) { return UseGeo{}, nil },
	"stem": func(suffix string) (Strategy, error) {
		if err := ValidateDepthSuffix(suffix); err != nil {
			return nil, err
		}
		return Stem{DepthSuffix: suffix}, nil
	},
}

// Lookup returns the built-in strategy called name. depthSuffix is only used
// (and validated) by strategies that take one.
func Lookup(name, depthSuffix string) (Strategy, error) {
	ctor, ok := builtins[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown correlation scheme %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return ctor(depthSuffix)
}

// Names lists the built-in strategy names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
