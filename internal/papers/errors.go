package papers

import "errors"

// ErrNoText indicates the PDF parsed but yielded no extractable text,
// typically a scanned paper without an OCR layer.
var ErrNoText = errors.New("pdf contains no extractable text")
