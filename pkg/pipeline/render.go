package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/Rishikoli/chaingraph/pkg/errors"
	"github.com/Rishikoli/chaingraph/pkg/highlight"
	"github.com/Rishikoli/chaingraph/pkg/layout"
	"github.com/Rishikoli/chaingraph/pkg/observability"
	"github.com/Rishikoli/chaingraph/pkg/scene"
	"github.com/Rishikoli/chaingraph/pkg/surface"
)

// Render rasterizes one fitted view of the scene into every requested
// format. The camera is fit to the frame size; interactive pan/zoom state
// never reaches batch rendering.
func Render(ctx context.Context, s *scene.Scene, pos layout.Positions, hl highlight.Result, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	hooks := observability.Render()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	frame := fitFrame(s, pos, hl, opts)

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(frame, format, opts)
		if err != nil {
			hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
			return nil, err
		}
		artifacts[format] = data
	}

	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
	return artifacts, nil
}

func renderFormat(frame surface.Frame, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return surface.RenderSVG(frame), nil
	case FormatPNG:
		var buf bytes.Buffer
		if err := surface.EncodePNG(&buf, frame, opts.Scale); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		return renderJSON(frame)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
	}
}

// fitFrame builds a paintable frame with the camera fit to content. With
// Focus set and a non-empty match set, the camera snaps to the matched
// bounding box instead; batch output has no animation, so the snap is the
// whole move.
func fitFrame(s *scene.Scene, pos layout.Positions, hl highlight.Result, opts Options) surface.Frame {
	cam := surface.NewCamera(opts.Width, opts.Height)
	target, ok := pos.Bounds()
	if opts.Focus {
		if rect, found := hl.FocusTarget(pos); found {
			target, ok = rect, true
		}
	}
	if ok {
		cam = cam.FitRect(target, surface.DefaultFitPadding)
	}
	return surface.Frame{
		Scene:     s,
		Positions: pos,
		Highlight: hl,
		Camera:    cam,
		Width:     opts.Width,
		Height:    opts.Height,
	}
}

// jsonArtifact is the wire shape of the JSON output format.
type jsonArtifact struct {
	ChainID   string                 `json:"chain_id"`
	Nodes     int                    `json:"nodes"`
	Edges     int                    `json:"edges"`
	Positions map[string]scene.Point `json:"positions"`
	Matched   []string               `json:"matched_ids,omitempty"`
}

func renderJSON(frame surface.Frame) ([]byte, error) {
	out := jsonArtifact{
		ChainID:   frame.Scene.ChainID(),
		Nodes:     frame.Scene.NodeCount(),
		Edges:     frame.Scene.EdgeCount(),
		Positions: frame.Positions,
		Matched:   frame.Highlight.MatchedIDs,
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "encode json artifact")
	}
	return data, nil
}
