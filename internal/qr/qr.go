package qr

import (
	"fmt"
	"net/http"
	"strconv"

	"agama-events/internal/utils"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	defaultSize = 256
	maxSize     = 1024
)

// Generator renders QR codes pointing at public event pages.
type Generator struct {
	AppURL string
}

func NewGenerator(appURL string) *Generator {
	return &Generator{AppURL: appURL}
}

// EventPageURL is the public page the QR code resolves to.
func (g *Generator) EventPageURL(eventID string) string {
	return fmt.Sprintf("%s/event/%s", g.AppURL, eventID)
}

// Generate returns a PNG QR code for the event page.
func (g *Generator) Generate(eventID string, size int) ([]byte, error) {
	if size <= 0 || size > maxSize {
		size = defaultSize
	}
	return qrcode.Encode(g.EventPageURL(eventID), qrcode.Medium, size)
}

// ServeEventQR handles GET /api/v1/events/{eventID}/qr. The eventID is not
// checked against the catalog: the code only embeds a URL, and the page
// behind it 404s on its own for unknown events.
func (g *Generator) ServeEventQR(w http.ResponseWriter, r *http.Request) {
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))

	png, err := g.Generate(chi.URLParam(r, "eventID"), size)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to generate QR code", ""))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(png)
}
