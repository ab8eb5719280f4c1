//go:build ocr

package pdf

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/otiai10/gosseract/v2"
)

// ocrDPI is the resolution pages are rendered at before recognition.
const ocrDPI = 150

func defaultOCR() OCRFunc {
	return recognisePage
}

// recognisePage renders one page with pdftoppm and reads it with tesseract.
func recognisePage(ctx context.Context, path string, page int) (string, error) {
	dir, err := os.MkdirTemp("", "contextpacket-ocr-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	n := strconv.Itoa(page)
	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-f", n, "-l", n, "-r", strconv.Itoa(ocrDPI), "-png", "-singlefile", path, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("pdftoppm page %d: %w: %s", page, err, out)
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetImage(prefix + ".png"); err != nil {
		return "", err
	}
	return client.Text()
}
