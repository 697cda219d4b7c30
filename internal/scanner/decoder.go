// Package scanner feeds decoded QR payloads from a continuously
// sampling camera (or a still image) to a single downstream consumer,
// suppressing duplicate reads of the same physical code during one
// scan session.
package scanner

import "errors"

// Decoder start failures are reported as distinct, user-actionable
// error kinds so the UI can tell the operator what to fix.  Per-frame
// non-detections are not failures and never reach these values.
var (
	// ErrPermissionDenied means camera access was refused.
	ErrPermissionDenied = errors.New("camera permission denied")
	// ErrCameraUnavailable means no camera device could be found.
	ErrCameraUnavailable = errors.New("camera unavailable")
	// ErrCameraBusy means the camera is already in use elsewhere.
	ErrCameraBusy = errors.New("camera already in use")
	// ErrNotDetected is returned by still-image decoding when the
	// image contains no readable QR code.
	ErrNotDetected = errors.New("no qr code detected")
)

// Decoder is the capability interface a platform camera integration
// must satisfy.  Start begins emitting raw decode events through the
// callback registered with the pipeline; Pause and Resume suspend and
// continue frame sampling where the platform supports it.
// Implementations that cannot pause may make Pause/Resume no-ops.
// The pipeline's debounce logic depends only on this interface, so a
// native camera API and a web-based one are interchangeable.
type Decoder interface {
	Start(onDecode func(text string)) error
	Stop() error
	Pause()
	Resume()
}
