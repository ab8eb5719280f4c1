//go:build !ocr

package pdf

// defaultOCR is nil unless built with the ocr tag, which needs tesseract.
func defaultOCR() OCRFunc {
	return nil
}
