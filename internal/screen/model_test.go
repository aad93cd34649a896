package screen

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/macrocam/macrocam/internal/camera"
)

type fakeCamera struct {
	permission camera.Permission
	permErr    error
	image      camera.Image
	captureErr error
	captures   int
}

func (c *fakeCamera) RequestPermission(ctx context.Context) (camera.Permission, error) {
	return c.permission, c.permErr
}

func (c *fakeCamera) Capture(ctx context.Context, opts camera.Options) (camera.Image, error) {
	c.captures++
	if opts.AspectWidth != 4 || opts.AspectHeight != 3 || opts.Quality != 1 {
		return camera.Image{}, errors.New("unexpected capture options")
	}
	return c.image, c.captureErr
}

type fakeUploader struct {
	macros string
	err    error
	paths  []string
}

func (u *fakeUploader) Analyze(ctx context.Context, imagePath string) (string, error) {
	u.paths = append(u.paths, imagePath)
	return u.macros, u.err
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Expected Model, got %T", next)
	}
	return model, cmd
}

func mounted(t *testing.T, cam *fakeCamera, up *fakeUploader) Model {
	t.Helper()
	m := New(context.Background(), cam, up, camera.DefaultOptions())
	m, _ = update(t, m, m.requestPermission())
	return m
}

func TestPermissionResolution(t *testing.T) {
	tests := []struct {
		name     string
		cam      *fakeCamera
		expected camera.Permission
	}{
		{name: "granted", cam: &fakeCamera{permission: camera.PermissionGranted}, expected: camera.PermissionGranted},
		{name: "denied", cam: &fakeCamera{permission: camera.PermissionDenied}, expected: camera.PermissionDenied},
		{name: "query error", cam: &fakeCamera{permission: camera.PermissionGranted, permErr: errors.New("boom")}, expected: camera.PermissionDenied},
		{name: "unresolved", cam: &fakeCamera{}, expected: camera.PermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mounted(t, tt.cam, &fakeUploader{})
			if m.State().Permission != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, m.State().Permission)
			}
		})
	}
}

func TestCaptureAndUploadSuccess(t *testing.T) {
	cam := &fakeCamera{permission: camera.PermissionGranted, image: camera.Image{Path: "/tmp/meal.jpg"}}
	up := &fakeUploader{macros: "Protein: 20g, Carbs: 30g, Fat: 10g"}
	m := mounted(t, cam, up)

	m, cmd := update(t, m, key(" "))
	if cmd == nil {
		t.Fatal("Expected capture command")
	}

	m, cmd = update(t, m, cmd())
	if !m.State().Busy || m.State().Image == nil || m.State().Image.Path != "/tmp/meal.jpg" {
		t.Fatalf("Unexpected state after capture: %+v", m.State())
	}
	if !strings.Contains(m.View(), "Analyzing your food...") {
		t.Error("Expected loading overlay while busy")
	}

	// the control is disabled while the upload is in flight
	if _, again := update(t, m, key("enter")); again != nil {
		t.Error("Expected no command while busy")
	}

	m, _ = update(t, m, cmd())
	if m.State().Busy {
		t.Error("Expected busy cleared")
	}
	if m.State().Result == nil || *m.State().Result != up.macros {
		t.Errorf("Unexpected result %+v", m.State().Result)
	}
	if len(up.paths) != 1 || up.paths[0] != "/tmp/meal.jpg" {
		t.Errorf("Unexpected uploads %v", up.paths)
	}
	if !m.State().CanCapture() {
		t.Error("Expected capture re-enabled")
	}
}

func TestUploadFailureRaisesAlert(t *testing.T) {
	cam := &fakeCamera{permission: camera.PermissionGranted, image: camera.Image{Path: "/tmp/meal.jpg"}}
	m := mounted(t, cam, &fakeUploader{err: errors.New("connection refused")})

	m, cmd := update(t, m, key("c"))
	m, cmd = update(t, m, cmd())
	m, _ = update(t, m, cmd())

	s := m.State()
	if s.Busy || s.Result != nil {
		t.Errorf("Unexpected state after failure: %+v", s)
	}
	if s.Alert == nil || !strings.Contains(m.View(), "There was an error analyzing the image") {
		t.Error("Expected upload alert")
	}

	// first key only dismisses the alert
	m, cmd = update(t, m, key(" "))
	if cmd != nil || m.State().Alert != nil {
		t.Errorf("Expected alert dismissed without capture, got %+v", m.State().Alert)
	}
}

func TestCancelledCaptureLeavesStateUnchanged(t *testing.T) {
	previous := "Looks like a salad"
	img := camera.Image{Path: "/tmp/old.jpg"}
	cam := &fakeCamera{permission: camera.PermissionGranted, captureErr: camera.ErrCaptureCancelled}
	m := mounted(t, cam, &fakeUploader{})
	m.state.Image = &img
	m.state.Result = &previous
	before := m.State()

	m, cmd := update(t, m, key(" "))
	m, cmd = update(t, m, cmd())
	if cmd != nil {
		t.Error("Expected no upload after cancellation")
	}
	if m.State() != before {
		t.Errorf("Expected state unchanged, got %+v", m.State())
	}
	if m.capturing {
		t.Error("Expected camera flow closed")
	}
}

func TestCaptureFailureKeepsState(t *testing.T) {
	cam := &fakeCamera{permission: camera.PermissionGranted, captureErr: errors.New("device busy")}
	m := mounted(t, cam, &fakeUploader{})

	m, cmd := update(t, m, key(" "))
	m, cmd = update(t, m, cmd())
	if cmd != nil {
		t.Error("Expected no upload after capture failure")
	}
	if m.State().Image != nil || m.State().Busy || m.State().Alert == nil {
		t.Errorf("Unexpected state %+v", m.State())
	}
}

func TestCaptureWithoutPermission(t *testing.T) {
	cam := &fakeCamera{permission: camera.PermissionDenied}
	m := mounted(t, cam, &fakeUploader{})

	m, cmd := update(t, m, key(" "))
	if cmd != nil {
		t.Error("Expected no capture without permission")
	}
	if cam.captures != 0 {
		t.Errorf("Expected camera untouched, got %d captures", cam.captures)
	}
	if m.State().Alert == nil || m.State().Alert.Title != "Permission Required" {
		t.Errorf("Expected permission alert, got %+v", m.State().Alert)
	}
}

func TestRepeatedTriggerWhileCameraOpen(t *testing.T) {
	cam := &fakeCamera{permission: camera.PermissionGranted, image: camera.Image{Path: "/tmp/meal.jpg"}}
	m := mounted(t, cam, &fakeUploader{})

	m, cmd := update(t, m, key(" "))
	if cmd == nil {
		t.Fatal("Expected capture command")
	}
	if _, again := update(t, m, key(" ")); again != nil {
		t.Error("Expected second trigger ignored while camera is open")
	}
}

func TestQuit(t *testing.T) {
	m := mounted(t, &fakeCamera{permission: camera.PermissionGranted}, &fakeUploader{})
	_, cmd := update(t, m, key("q"))
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
}
