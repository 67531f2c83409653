package slidedotnet

import (
	"fmt"
	"strings"
)

// Validate checks the presentation for structural issues and returns an error
// describing all problems found, or nil if the presentation is valid.
// Charts are checked by resolving every series, which may open embedded
// workbooks.
func (p *Presentation) Validate() error {
	var errs []string

	if p.SlideWidth() <= 0 || p.SlideHeight() <= 0 {
		errs = append(errs, "slide size (p:sldSz) must be positive")
	}

	slides, err := p.Slides()
	if err != nil {
		errs = append(errs, err.Error())
	}
	for _, slide := range slides {
		prefix := fmt.Sprintf("slide %d", slide.Number())
		for _, e := range validateSlide(slide) {
			errs = append(errs, prefix+": "+e)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("validation failed:\n  %s", strings.Join(errs, "\n  "))
}

func validateSlide(s *Slide) []string {
	shapes, err := s.Shapes()
	if err != nil {
		return []string{err.Error()}
	}
	seen := make(map[int]bool)
	return validateShapes(shapes, "", seen)
}

func validateShapes(shapes *Shapes, parent string, seen map[int]bool) []string {
	var errs []string
	for j, shape := range shapes.All() {
		prefix := fmt.Sprintf("%sshape %d", parent, j+1)
		if id := shape.ID(); id == 0 {
			errs = append(errs, prefix+": shape id is missing")
		} else if seen[id] {
			errs = append(errs, fmt.Sprintf("%s: duplicate shape id %d", prefix, id))
		} else {
			seen[id] = true
		}
		if shape.Width() < 0 {
			errs = append(errs, prefix+": width is negative")
		}
		if shape.Height() < 0 {
			errs = append(errs, prefix+": height is negative")
		}

		switch sh := shape.(type) {
		case *Table:
			cols := sh.ColumnCount()
			if sh.RowCount() == 0 || cols == 0 {
				errs = append(errs, prefix+": table must have at least 1 row and 1 column")
			}
			for _, row := range sh.Rows() {
				if len(row.Cells()) != cols {
					errs = append(errs, fmt.Sprintf("%s: table row %d has %d cells, grid has %d columns", prefix, row.Index()+1, len(row.Cells()), cols))
				}
			}
		case *Chart:
			for _, series := range sh.Series() {
				if _, err := series.PointValues(); err != nil {
					errs = append(errs, fmt.Sprintf("%s: chart series %d: %v", prefix, series.Index()+1, err))
				}
			}
		case *Picture:
			if img, err := sh.Image(); err != nil {
				errs = append(errs, prefix+": "+err.Error())
			} else if !isValidImageMime(img.MIME()) {
				errs = append(errs, prefix+": unsupported image MIME type: "+img.MIME())
			}
		case *Group:
			errs = append(errs, validateShapes(sh.Shapes(), prefix+" > ", seen)...)
		}
	}
	return errs
}

// isValidImageMime checks if a MIME type is an image format PowerPoint
// renders.
func isValidImageMime(mime string) bool {
	switch mime {
	case "image/png", "image/jpeg", "image/gif", "image/bmp", "image/svg+xml",
		"image/tiff", "image/x-emf", "image/x-wmf", "image/webp":
		return true
	}
	return false
}
