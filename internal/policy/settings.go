package policy

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/therealutkarshpriyadarshi/ytmanifest/pkg/models"
)

var (
	ErrUnknownCodecFamily = errors.New("unknown codec family")
	ErrUnknownFpsLimit    = errors.New("unknown fps limit")
	ErrUnknownFpsHint     = errors.New("unknown fps hint")
	ErrUnknownInputStream = errors.New("unknown input stream")
	ErrUnknownManifest    = errors.New("unknown manifest type")
)

// Input stream engines
const (
	InputStreamAdaptive     = "adaptive"
	InputStreamFFmpegDirect = "ffmpegdirect"
)

// Settings is the user-facing settings section as stored in configuration
type Settings struct {
	Captions        bool
	FpsLimit        int
	ExcludeCodecs   []string
	FpsHint         string
	PreferredHeight int
	InputStream     string
	ManifestType    string
}

// DefaultSettings returns the settings used when nothing is configured
func DefaultSettings() Settings {
	return Settings{
		FpsHint:      FpsHintInt,
		InputStream:  InputStreamAdaptive,
		ManifestType: models.ManifestTypeMPD,
	}
}

// Snapshot is a resolved, read-only view of Settings. A new snapshot is
// built on every reload; existing snapshots are never mutated.
type Snapshot struct {
	Captions        bool
	FpsLimit        int
	FpsLimitLabel   string
	ExcludeFamilies []string
	ExcludeLabels   []string
	Exclude         []string
	FpsHint         string
	PreferredHeight int
	InputStream     string
	ManifestType    string
}

// NewSnapshot resolves settings. It always returns a usable snapshot:
// unknown values are dropped or replaced by their default and reported
// through the returned error.
func NewSnapshot(s Settings) (*Snapshot, error) {
	var errs []error

	snap := &Snapshot{
		Captions:        s.Captions,
		FpsLimit:        s.FpsLimit,
		PreferredHeight: s.PreferredHeight,
		FpsHint:         s.FpsHint,
		InputStream:     s.InputStream,
		ManifestType:    s.ManifestType,
	}

	label, ok := FpsLimits[s.FpsLimit]
	if !ok {
		errs = append(errs, fmt.Errorf("%w: %d", ErrUnknownFpsLimit, s.FpsLimit))
		snap.FpsLimit = 0
		label = FpsLimits[0]
	}
	snap.FpsLimitLabel = label

	families, names, labels, err := ResolveFamilies(s.ExcludeCodecs)
	if err != nil {
		errs = append(errs, err)
	}
	snap.ExcludeFamilies = families
	snap.Exclude = names
	snap.ExcludeLabels = labels

	if snap.FpsHint == "" {
		snap.FpsHint = FpsHintInt
	} else if _, ok := FpsHints[snap.FpsHint]; !ok {
		errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownFpsHint, snap.FpsHint))
		snap.FpsHint = FpsHintInt
	}

	switch snap.InputStream {
	case InputStreamAdaptive, InputStreamFFmpegDirect:
	case "":
		snap.InputStream = InputStreamAdaptive
	default:
		errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownInputStream, snap.InputStream))
		snap.InputStream = InputStreamAdaptive
	}

	switch snap.ManifestType {
	case models.ManifestTypeMPD, models.ManifestTypeHLS:
	case "":
		snap.ManifestType = models.ManifestTypeMPD
	default:
		errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownManifest, snap.ManifestType))
		snap.ManifestType = models.ManifestTypeMPD
	}

	if snap.PreferredHeight < 0 {
		snap.PreferredHeight = 0
	}

	return snap, errors.Join(errs...)
}

// ResolveFamilies expands codec family keys into raw codec name prefixes.
// Unknown keys are skipped and reported.
func ResolveFamilies(keys []string) (families, names, labels []string, err error) {
	var unknown []string
	seen := make(map[string]bool)
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		family, ok := CodecFamilies[key]
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		families = append(families, key)
		names = append(names, family.Names...)
		labels = append(labels, family.Label)
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		err = fmt.Errorf("%w: %s", ErrUnknownCodecFamily, strings.Join(unknown, ", "))
	}
	return families, names, labels, err
}

// Policy builds the request policy. Non-empty overrides replace the
// configured exclusion list and frame-rate cap.
func (s *Snapshot) Policy(exclude []string, fpsLimit int) Policy {
	if len(exclude) == 0 {
		exclude = s.Exclude
	}
	if fpsLimit == 0 {
		fpsLimit = s.FpsLimit
	}
	return New(exclude, fpsLimit)
}
