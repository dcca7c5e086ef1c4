package view

import (
	"bytes"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/efactura/efactura/internal/models"
)

var (
	baseDir  string
	once     sync.Once
	tplCache = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}
)

func detectBase() {
	// Templates may sit at a different relative depth depending on whether
	// the binary runs from the repo root or a subdirectory.
	candidates := []string{"templates", "../templates", "../../templates", "../../../templates"}
	for _, c := range candidates {
		if fi, err := os.Stat(filepath.Clean(c)); err == nil && fi.IsDir() {
			baseDir = filepath.Clean(c)
			return
		}
	}
	baseDir = "templates"
}

// Funcs returns the helpers shared by every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"year":  func() int { return time.Now().Year() },
		"date":  func(t time.Time) string { return t.Format("02/01/2006") },
		"money": func(d decimal.Decimal) string { return d.StringFixed(2) + "€" },
		"moneyf": func(f float64) string {
			return decimal.NewFromFloat(f).StringFixed(2) + "€"
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"statusLabel": func(s models.InvoiceStatus) string {
			switch s {
			case models.InvoiceStatusPaid:
				return "Pagada"
			case models.InvoiceStatusOverdue:
				return "Vencida"
			default:
				return "Borrador"
			}
		},
	}
}

// Render parses and executes a template file, wrapping it in layout.html
// unless the file is a full document. Parsed templates are cached except in
// DEV mode.
func Render(w http.ResponseWriter, name string, data map[string]any) error {
	once.Do(detectBase)
	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["Year"]; !exists {
		data["Year"] = time.Now().Year()
	}

	devMode := os.Getenv("DEV") == "1"
	if !devMode {
		tplCache.RLock()
		t, ok := tplCache.m[name]
		tplCache.RUnlock()
		if ok && t != nil {
			return t.Execute(w, data)
		}
	}

	mainPath := filepath.Join(baseDir, name)
	content, err := os.ReadFile(mainPath)
	if err != nil {
		return err
	}
	layoutPath := filepath.Join(baseDir, "layout.html")
	useLayout := !bytes.Contains(bytes.ToLower(content), []byte("<!doctype"))
	if useLayout {
		if fi, serr := os.Stat(layoutPath); serr != nil || fi.IsDir() {
			useLayout = false
		}
	}

	var t *template.Template
	if useLayout {
		t, err = template.New("layout.html").Funcs(Funcs()).ParseFiles(layoutPath, mainPath)
	} else {
		t, err = template.New(name).Funcs(Funcs()).ParseFiles(mainPath)
	}
	if err != nil {
		return err
	}

	if !devMode {
		tplCache.Lock()
		tplCache.m[name] = t
		tplCache.Unlock()
	}
	return t.Execute(w, data)
}
