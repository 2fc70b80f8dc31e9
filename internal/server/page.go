package server

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"cadenza/internal/console"
	"cadenza/internal/notify"
)

//go:embed templates/index.html
var templateFS embed.FS

// pageData is what the console page template renders
type pageData struct {
	Snapshot      console.Snapshot
	Notifications []notify.Notification
	Actions       []Binding
	DefaultUser   string
	DefaultTier   string
	Tiers         []string
}

var templateFuncs = template.FuncMap{
	"percent": func(f float64) int { return int(f*100 + 0.5) },
	"minsec": func(seconds int) string {
		return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
	},
}

func parsePage() (*template.Template, error) {
	return template.New("index.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/index.html")
}

// renderPage executes the console page with the current state
func (s *ConsoleServer) renderPage(w io.Writer) error {
	data := pageData{
		Snapshot:      s.console.Snapshot(),
		Notifications: s.center.List(),
		DefaultUser:   s.config.Console.DefaultUser,
		DefaultTier:   s.config.Console.DefaultTier,
		Tiers:         []string{"all", "hot", "rising", "classic"},
	}
	for _, a := range requiredActions {
		if b, ok := s.bindings[a]; ok {
			data.Actions = append(data.Actions, b)
		}
	}
	return s.page.Execute(w, data)
}
