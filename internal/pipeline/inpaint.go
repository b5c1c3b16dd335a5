package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/atlastrail/render/internal/imageedit"
	"github.com/atlastrail/render/internal/job"
	"github.com/atlastrail/render/internal/logger"
	"github.com/disintegration/imaging"
)

const inpaintPrompt = "remove the masked object and fill the region naturally"

type Inpainter interface {
	Inpaint(ctx context.Context, imagePath, maskPath, prompt string) ([]byte, error)
}

// Inpainting handles object_remove: both inputs are full URLs carried in
// the job params rather than a media id.
type Inpainting struct {
	editor Inpainter
}

var _ Pipeline = (*Inpainting)(nil)

func NewInpainting(editor Inpainter) *Inpainting {
	return &Inpainting{editor: editor}
}

func (p *Inpainting) Name() string {
	return "inpainting"
}

func (p *Inpainting) Run(ctx context.Context, in *Input) (*Artifact, error) {
	log := logger.FromContext(ctx)

	params, ok := in.Params.(*job.InpaintParams)
	if !ok {
		return nil, fmt.Errorf("%w: inpainting needs src_url and mask_url params", ErrValidation)
	}

	imagePath, err := in.WS.Download(ctx, params.SrcURL, "src.png")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransientIO, err)
	}
	maskPath, err := in.WS.Download(ctx, params.MaskURL, "mask.png")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransientIO, err)
	}

	data, err := p.editor.Inpaint(ctx, imagePath, maskPath, inpaintPrompt)
	if err != nil {
		if errors.Is(err, imageedit.ErrNoImageData) {
			return nil, fmt.Errorf("%w: %v", ErrProcessing, err)
		}
		var apiErr *imageedit.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%w: %v", ErrTransientIO, apiErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransientIO, err)
	}

	// The service occasionally returns payloads that are not images at
	// all; reject those before publishing.
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: result is not a decodable image: %v", ErrProcessing, err)
	}
	bounds := img.Bounds()

	log.Debug("inpainting finished", "width", bounds.Dx(), "height", bounds.Dy(), "bytes", len(data))

	return &Artifact{
		Data:        data,
		ContentType: "image/png",
		Filename:    "inpainted.png",
		Kind:        KindInpaint,
		Log:         fmt.Sprintf("inpainted %dx%d image (%d bytes)", bounds.Dx(), bounds.Dy(), len(data)),
	}, nil
}
