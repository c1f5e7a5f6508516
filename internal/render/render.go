// Package render turns page state into HTML fragments. Every function is a
// pure function of its input; Region holds the output currently on screen.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/farmer-portal/internal/models"
)

var funcs = template.FuncMap{
	"tokens":   humanize.Comma,
	"signed":   signed,
	"isoDate":  func(t time.Time) string { return t.Format("2006-01-02") },
	"longDate": func(t time.Time) string { return t.Format("January 2, 2006") },
	"imageURL": imageURL,
	"purposes": purposes,
}

var templates = template.Must(template.New("render").Funcs(funcs).Parse(templateText))

func execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

// Region is a display slot. Render replaces its content, so rendering the
// same state twice leaves the same output. A nil Region is a detached view
// and ignores renders.
type Region struct {
	mu   sync.Mutex
	html template.HTML
}

func (r *Region) Render(html template.HTML) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.html = html
}

func (r *Region) HTML() template.HTML {
	if r == nil {
		return ""
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.html
}

func Balance(balance int64) (template.HTML, error) {
	return execute("balance", balance)
}

func Transactions(txs []models.Transaction) (template.HTML, error) {
	return execute("transactions", txs)
}

func Updates(updates []models.FarmUpdate) (template.HTML, error) {
	return execute("updates", updates)
}

func FundingList(reqs []models.FundingRequest) (template.HTML, error) {
	return execute("funding_list", reqs)
}

func FundingSummary(s models.FundingSummary) (template.HTML, error) {
	return execute("funding_summary", s)
}

func Catalog(items []models.CatalogItem) (template.HTML, error) {
	return execute("catalog", items)
}

// PurchasePreview is the content of the purchase confirmation modal.
type PurchasePreview struct {
	Item         models.PurchaseItem `json:"item"`
	Balance      int64               `json:"balance"`
	BalanceAfter int64               `json:"balance_after"`
	CanConfirm   bool                `json:"can_confirm"`
}

func Purchase(p PurchasePreview) (template.HTML, error) {
	return execute("purchase_preview", p)
}

func CropResult(crop string) (template.HTML, error) {
	return execute("crop_result", crop)
}

func ErrorPanel(msg string) (template.HTML, error) {
	return execute("error_panel", msg)
}

type predictionRow struct {
	Label   string
	Percent string
	prob    float64
}

// Disease lists the classifier labels by descending probability.
func Disease(p models.DiseasePrediction) (template.HTML, error) {
	rows := make([]predictionRow, 0, len(p.Prediction))
	for label, prob := range p.Prediction {
		rows = append(rows, predictionRow{
			Label:   strings.Replace(label, "_", " ", 1),
			Percent: decimal.NewFromFloat(prob).Mul(decimal.NewFromInt(100)).StringFixed(2),
			prob:    prob,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].prob != rows[j].prob {
			return rows[i].prob > rows[j].prob
		}
		return rows[i].Label < rows[j].Label
	})
	return execute("disease", struct {
		Rows           []predictionRow
		NutrientStatus string
	}{rows, p.NutrientStatus})
}

func Profile(p models.FarmerProfile) (template.HTML, error) {
	initial := "F"
	if r := []rune(strings.TrimSpace(p.Name)); len(r) > 0 {
		initial = string(r[0])
	}
	land := "N/A"
	if p.LandAreaAcres > 0 {
		land = strconv.FormatFloat(p.LandAreaAcres, 'f', -1, 64) + " Acres"
	}
	return execute("profile", struct {
		Initial, Name, Location, Crop, Land string
	}{
		Initial:  initial,
		Name:     orNA(p.Name),
		Location: p.State + ", " + p.District,
		Crop:     orNA(p.FarmingType),
		Land:     land,
	})
}

func Images(urls []string) (template.HTML, error) {
	return execute("images", urls)
}

// Cycle renders the season panel; nil means no active season.
func Cycle(c *models.CropCycle) (template.HTML, error) {
	type view struct {
		Phase, Days string
		Progress    float64
		ShowStart   bool
	}
	if c == nil {
		return execute("cycle", view{Phase: "No active season", Days: "-", ShowStart: true})
	}
	return execute("cycle", view{
		Phase:    fmt.Sprintf("%s (%s)", c.Phase, c.CropType),
		Days:     fmt.Sprintf("%d of %d days", c.DaysPassed, c.Duration),
		Progress: c.Progress,
	})
}

func signed(amount int64) string {
	if amount > 0 {
		return "+" + humanize.Comma(amount)
	}
	return humanize.Comma(amount)
}

// imageURL only trusts image data URLs produced by the update form.
func imageURL(s string) template.URL {
	if strings.HasPrefix(s, "data:image/") {
		return template.URL(s)
	}
	return ""
}

func purposes(r models.FundingRequest) string {
	return strings.ReplaceAll(r.PurposeField(), ",", ", ")
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
