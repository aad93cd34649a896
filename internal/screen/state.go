package screen

import "github.com/macrocam/macrocam/internal/camera"

// Alert is a modal message shown until dismissed.
type Alert struct {
	Title   string
	Message string
}

var (
	alertPermissionRequired = Alert{Title: "Permission Required", Message: "Camera access is needed to take pictures."}
	alertUploadFailed       = Alert{Title: "Error", Message: "There was an error analyzing the image"}
	alertCaptureFailed      = Alert{Title: "Camera Error", Message: "The photo could not be captured."}
)

// State is everything the screen renders from. Transitions return a new
// State and never mutate the receiver.
type State struct {
	Permission camera.Permission
	Image      *camera.Image
	// Result is nil until an upload succeeds.
	Result *string
	Busy   bool
	// RequestID identifies the most recently issued upload.
	RequestID uint64
	Alert     *Alert
}

// CanCapture reports whether the capture control is enabled.
func (s State) CanCapture() bool {
	return s.Permission == camera.PermissionGranted && !s.Busy
}

// WithPermission records the one-time permission answer.
func (s State) WithPermission(p camera.Permission) State {
	if s.Permission != camera.PermissionUnknown {
		return s
	}
	s.Permission = p
	return s
}

// RequestCapture applies a capture trigger. The bool is true when the
// camera should be opened.
func (s State) RequestCapture() (State, bool) {
	if s.Permission != camera.PermissionGranted {
		alert := alertPermissionRequired
		s.Alert = &alert
		return s, false
	}
	if s.Busy {
		return s, false
	}
	return s, true
}

// Captured stores a new photo, clears the previous result and marks an
// upload as in flight under a fresh request id.
func (s State) Captured(img camera.Image) State {
	s.Image = &img
	s.Result = nil
	s.Busy = true
	s.RequestID++
	return s
}

// Uploaded records a successful upload. Responses for anything but the
// latest request are dropped.
func (s State) Uploaded(requestID uint64, macros string) State {
	if requestID != s.RequestID {
		return s
	}
	s.Result = &macros
	s.Busy = false
	return s
}

// UploadFailed records a failed upload and raises the generic alert.
func (s State) UploadFailed(requestID uint64) State {
	if requestID != s.RequestID {
		return s
	}
	alert := alertUploadFailed
	s.Result = nil
	s.Busy = false
	s.Alert = &alert
	return s
}

// CaptureFailed raises an alert without touching the photo or result.
func (s State) CaptureFailed() State {
	alert := alertCaptureFailed
	s.Alert = &alert
	return s
}

// DismissAlert hides the visible alert.
func (s State) DismissAlert() State {
	s.Alert = nil
	return s
}
