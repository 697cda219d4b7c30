package scanner

import (
	"image"
	_ "image/jpeg" // register JPEG decoding for uploaded photos
	_ "image/png"  // register PNG decoding for screenshots
	"io"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// DecodeStill reads a single QR payload from an uploaded image.  It
// is the fallback path for when the live camera is unusable: one
// image yields at most one decode, so no debouncing applies.  When
// the image decodes but contains no readable QR code, ErrNotDetected
// is returned.
func DecodeStill(r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", err
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", err
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", ErrNotDetected
	}
	return result.GetText(), nil
}
