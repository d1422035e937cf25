package curator

import (
	"errors"
	"fmt"
)

// Extractor turns one fetched page into candidate examples. Malformed
// input yields an *ExtractionError, never a panic.
type Extractor interface {
	Extract(pkg *Package, doc *Document) ([]*RawExample, error)
}

// Extractors holds one extractor per documentation family.
type Extractors struct {
	Gallery   Extractor
	Notebook  Extractor
	Reference Extractor
}

// Extract dispatches doc to the extractor for family. Pages that cannot be
// parsed yield no examples and an *ExtractionError.
func (e *Extractors) Extract(family DocFamily, pkg *Package, doc *Document) (examples []*RawExample, err error) {
	var x Extractor
	switch family {
	case FamilyGallery:
		x = e.Gallery
	case FamilyNotebook:
		x = e.Notebook
	case FamilyReference:
		x = e.Reference
	}
	if x == nil {
		return nil, &ExtractionError{URL: doc.URL, Family: family, Err: Errorf(EINVALID, "no extractor for %s", family)}
	}

	defer func() {
		if r := recover(); r != nil {
			examples = nil
			err = &ExtractionError{URL: doc.URL, Family: family, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	examples, err = x.Extract(pkg, doc)
	if err != nil {
		var ee *ExtractionError
		if !errors.As(err, &ee) {
			err = &ExtractionError{URL: doc.URL, Family: family, Err: err}
		}
		return nil, err
	}
	return examples, nil
}
