package screen

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/macrocam/macrocam/internal/camera"
	"github.com/macrocam/macrocam/internal/macros"
)

const cardsPerRow = 3

var (
	orange      = lipgloss.Color("#FF9800")
	deepOrange  = lipgloss.Color("#E65100")
	softOrange  = lipgloss.Color("#FFE0B2")
	mutedGray   = lipgloss.Color("#9E9E9E")
	warningTone = lipgloss.Color("#FFB74D")

	spinnerStyle = lipgloss.NewStyle().Foreground(orange)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(deepOrange).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(softOrange).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(softOrange).
			Padding(1, 2)

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(deepOrange)
	helpStyle   = lipgloss.NewStyle().Foreground(mutedGray)
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(warningTone)
	loadingText = lipgloss.NewStyle().Bold(true).Foreground(orange)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(orange).
			Width(14).
			Align(lipgloss.Center)
	cardValueStyle = lipgloss.NewStyle().Bold(true).Foreground(deepOrange)
	cardLabelStyle = lipgloss.NewStyle().Foreground(mutedGray)

	buttonEnabled = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF6F00")).
			Padding(0, 3)
	buttonDisabled = lipgloss.NewStyle().
			Foreground(mutedGray).
			Background(lipgloss.Color("#EEEEEE")).
			Padding(0, 3)

	alertStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(deepOrange).
			Padding(0, 2)
)

// Render draws the screen for s. indicator is the current progress
// indicator frame. Render has no side effects: equal inputs give equal
// output.
func Render(s State, indicator string, width int) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Macros Estimator"))
	b.WriteString("\n\n")
	b.WriteString(renderContent(s, indicator))
	b.WriteString("\n\n")

	if s.Alert != nil {
		b.WriteString(renderAlert(*s.Alert))
		b.WriteString("\n\n")
	}

	b.WriteString(renderFooter(s))

	if width > 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
	}
	return b.String()
}

func renderContent(s State, indicator string) string {
	switch {
	case s.Permission == camera.PermissionUnknown:
		return panelStyle.Render(indicator + " Requesting camera permission...")

	case s.Permission == camera.PermissionDenied:
		return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
			errorStyle.Render("(!) Camera permission is denied"),
			helpStyle.Render("Please enable camera access in your device settings"),
		))

	case s.Image == nil:
		return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
			titleStyle.Render("No Food Analyzed"),
			helpStyle.Render("Take a photo of your meal to see nutritional info"),
		))
	}

	preview := renderPreview(*s.Image)

	if s.Busy {
		return lipgloss.JoinVertical(lipgloss.Left,
			preview,
			loadingText.Render(indicator+" Analyzing your food..."),
		)
	}

	if s.Result == nil || *s.Result == "" {
		return preview
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		preview,
		"",
		titleStyle.Render("Nutrition Facts"),
		renderBreakdown(macros.Parse(*s.Result)),
	)
}

func renderPreview(img camera.Image) string {
	label := "[photo] " + filepath.Base(img.Path)
	if !img.CapturedAt.IsZero() {
		label += " @ " + img.CapturedAt.Format(time.TimeOnly)
	}
	return panelStyle.Render(label)
}

func renderBreakdown(b macros.Breakdown) string {
	if b.IsText {
		return panelStyle.Render(b.Text)
	}

	var rows []string
	for start := 0; start < len(b.Cards); start += cardsPerRow {
		end := min(start+cardsPerRow, len(b.Cards))
		cards := make([]string, 0, end-start)
		for _, card := range b.Cards[start:end] {
			cards = append(cards, renderCard(card))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderCard(card macros.Card) string {
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
		cardValueStyle.Render(card.Value),
		cardLabelStyle.Render(card.Label),
	))
}

func renderAlert(a Alert) string {
	return alertStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(a.Title),
		a.Message,
		helpStyle.Render("press any key to dismiss"),
	))
}

func renderFooter(s State) string {
	button := buttonDisabled.Render("○ Take Photo")
	if s.CanCapture() {
		button = buttonEnabled.Render("● Take Photo")
	}
	return lipgloss.JoinVertical(lipgloss.Center,
		button,
		helpStyle.Render("space: take photo • q: quit"),
	)
}
