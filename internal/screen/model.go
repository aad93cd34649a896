package screen

import (
	"context"
	"errors"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/macrocam/macrocam/internal/camera"
)

// Uploader sends a captured photo for analysis and returns the macros text.
type Uploader interface {
	Analyze(ctx context.Context, imagePath string) (string, error)
}

type permissionMsg struct {
	permission camera.Permission
}

type capturedMsg struct {
	image camera.Image
}

type captureCancelledMsg struct{}

type captureFailedMsg struct {
	err error
}

type uploadDoneMsg struct {
	requestID uint64
	macros    string
}

type uploadFailedMsg struct {
	requestID uint64
	err       error
}

// Model is the bubbletea program for the capture screen.
type Model struct {
	ctx      context.Context
	camera   camera.Camera
	uploader Uploader
	options  camera.Options

	state State
	// capturing is true while the camera flow is open; the camera owns
	// the device until it returns.
	capturing bool
	spinner   spinner.Model
	width     int
}

// New returns a screen in its mount state.
func New(ctx context.Context, cam camera.Camera, uploader Uploader, opts camera.Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return Model{
		ctx:      ctx,
		camera:   cam,
		uploader: uploader,
		options:  opts,
		spinner:  s,
	}
}

// State returns the current screen state.
func (m Model) State() State {
	return m.state
}

// Init queries the camera permission once.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.requestPermission, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case permissionMsg:
		m.state = m.state.WithPermission(msg.permission)
		slog.Info("Camera permission resolved", "permission", m.state.Permission)
		return m, nil

	case capturedMsg:
		m.capturing = false
		m.state = m.state.Captured(msg.image)
		slog.Info("Uploading image", "request_id", m.state.RequestID, "path", msg.image.Path)
		return m, m.upload(m.state.RequestID, msg.image.Path)

	case captureCancelledMsg:
		m.capturing = false
		slog.Debug("Capture cancelled")
		return m, nil

	case captureFailedMsg:
		m.capturing = false
		slog.Error("Capture failed", "err", msg.err)
		m.state = m.state.CaptureFailed()
		return m, nil

	case uploadDoneMsg:
		if msg.requestID != m.state.RequestID {
			slog.Warn("Discarding stale upload response", "request_id", msg.requestID, "current", m.state.RequestID)
		}
		m.state = m.state.Uploaded(msg.requestID, msg.macros)
		return m, nil

	case uploadFailedMsg:
		slog.Error("Error uploading image", "request_id", msg.requestID, "err", msg.err)
		m.state = m.state.UploadFailed(msg.requestID)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	}

	if m.state.Alert != nil {
		m.state = m.state.DismissAlert()
		return m, nil
	}

	switch msg.String() {
	case " ", "enter", "c":
		if m.capturing {
			return m, nil
		}
		next, ok := m.state.RequestCapture()
		m.state = next
		if !ok {
			return m, nil
		}
		m.capturing = true
		return m, m.capture
	}

	return m, nil
}

func (m Model) View() string {
	return Render(m.state, m.spinner.View(), m.width)
}

func (m Model) requestPermission() tea.Msg {
	p, err := m.camera.RequestPermission(m.ctx)
	if err != nil {
		slog.Error("Camera permission query failed", "err", err)
		return permissionMsg{permission: camera.PermissionDenied}
	}
	if p == camera.PermissionUnknown {
		p = camera.PermissionDenied
	}
	return permissionMsg{permission: p}
}

func (m Model) capture() tea.Msg {
	img, err := m.camera.Capture(m.ctx, m.options)
	if errors.Is(err, camera.ErrCaptureCancelled) {
		return captureCancelledMsg{}
	}
	if err != nil {
		return captureFailedMsg{err: err}
	}
	return capturedMsg{image: img}
}

func (m Model) upload(requestID uint64, path string) tea.Cmd {
	return func() tea.Msg {
		macros, err := m.uploader.Analyze(m.ctx, path)
		if err != nil {
			return uploadFailedMsg{requestID: requestID, err: err}
		}
		return uploadDoneMsg{requestID: requestID, macros: macros}
	}
}

// Run starts the screen on the terminal and blocks until the user quits.
func Run(ctx context.Context, cam camera.Camera, uploader Uploader, opts camera.Options) error {
	p := tea.NewProgram(New(ctx, cam, uploader, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
