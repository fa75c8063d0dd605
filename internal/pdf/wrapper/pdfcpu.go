package wrapper

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func relaxedConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

func readContext(path string) (*model.Context, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	ctx, err := api.ReadContext(file, relaxedConfiguration())
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}
	return ctx, nil
}

// pageHeights returns the height of every page in points, as pdfcpu
// resolves it from the inherited page boxes
func pageHeights(path string) ([]float64, error) {
	ctx, err := readContext(path)
	if err != nil {
		return nil, structureError("page_dims", err)
	}

	dims, err := ctx.PageDims()
	if err != nil {
		return nil, structureError("page_dims", err)
	}

	heights := make([]float64, len(dims))
	for i, d := range dims {
		heights[i] = d.Height
	}
	return heights, nil
}

// Validate checks the structure of a PDF file with pdfcpu in relaxed mode
// and returns its page count.
func Validate(path string) (int, error) {
	ctx, err := readContext(path)
	if err != nil {
		return 0, structureError("validate", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return 0, structureError("validate", err)
	}
	return ctx.PageCount, nil
}
