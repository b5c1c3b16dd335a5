package job

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownType   = errors.New("job: unknown job_type")
	ErrInvalidParams = errors.New("job: invalid params")
)

const DefaultTargetDurationSec = 30

// Params is the decoded per-type payload of a RenderJob. Each variant
// validates its own required fields; validation happens before any I/O.
type Params interface {
	Validate() error
}

// VideoParams backs export, auto_color and auto_cut jobs.
type VideoParams struct {
	ItemID            string `json:"itemId"`
	TargetDurationSec int    `json:"targetDurationSec,omitempty"`
}

func (p *VideoParams) Validate() error {
	if p.ItemID == "" {
		return fmt.Errorf("%w: itemId is required", ErrInvalidParams)
	}
	return nil
}

// TargetDuration returns the trim duration for auto_cut, defaulting
// when unset.
func (p *VideoParams) TargetDuration() int {
	if p.TargetDurationSec <= 0 {
		return DefaultTargetDurationSec
	}
	return p.TargetDurationSec
}

// SubtitleParams backs subtitles jobs.
type SubtitleParams struct {
	ItemID string `json:"itemId"`
}

func (p *SubtitleParams) Validate() error {
	if p.ItemID == "" {
		return fmt.Errorf("%w: itemId is required", ErrInvalidParams)
	}
	return nil
}

// InpaintParams backs object_remove jobs. This is the only variant whose
// inputs are full URLs rather than a media id.
type InpaintParams struct {
	SrcURL  string `json:"src_url"`
	MaskURL string `json:"mask_url"`
}

func (p *InpaintParams) Validate() error {
	if p.SrcURL == "" {
		return fmt.Errorf("%w: src_url is required", ErrInvalidParams)
	}
	if p.MaskURL == "" {
		return fmt.Errorf("%w: mask_url is required", ErrInvalidParams)
	}
	return nil
}

// DecodeParams decodes and validates the raw params payload for the given
// job type. Unknown types and missing required fields fail here, before
// the worker touches the network or spawns a subprocess.
func DecodeParams(jobType Type, raw json.RawMessage) (Params, error) {
	var p Params
	switch jobType {
	case TypeExport, TypeAutoColor, TypeAutoCut:
		p = &VideoParams{}
	case TypeSubtitles:
		p = &SubtitleParams{}
	case TypeObjectRemove:
		p = &InpaintParams{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, string(jobType))
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
