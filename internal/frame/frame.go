// Package frame renders view states as frame HTML responses and parses
// inbound frame actions.
package frame

import (
	"embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/Fantasim/sazonframe/internal/config"
	"github.com/Fantasim/sazonframe/internal/models"
	"github.com/Fantasim/sazonframe/internal/view"
)

//go:embed templates/*
var templateFS embed.FS

// ButtonTag is one button as it appears in the frame meta tags. Index is 1-based.
type ButtonTag struct {
	Index  int
	Label  string
	Action models.ButtonAction
	Target string
}

// Frame is the data behind one frame HTML document.
type Frame struct {
	Title       string
	Version     string
	Image       string
	AspectRatio string
	PostURL     string
	InputText   string
	Buttons     []ButtonTag
}

// Renderer turns view states into frames whose targets are absolute URLs
// under baseURL.
type Renderer struct {
	baseURL string
	page    *template.Template
	image   *template.Template
}

// NewRenderer parses the embedded templates. publicURL is the externally
// reachable origin of the server, e.g. "https://frames.example.com".
func NewRenderer(publicURL string) (*Renderer, error) {
	page, err := template.ParseFS(templateFS, "templates/frame.html")
	if err != nil {
		return nil, fmt.Errorf("parse frame template: %w", err)
	}

	image, err := template.ParseFS(templateFS, "templates/image.svg")
	if err != nil {
		return nil, fmt.Errorf("parse image template: %w", err)
	}

	return &Renderer{
		baseURL: strings.TrimRight(publicURL, "/") + config.BasePath,
		page:    page,
		image:   image,
	}, nil
}

// Build assembles the frame for state.
func (r *Renderer) Build(title string, state view.State) (Frame, error) {
	img, err := r.Image(state)
	if err != nil {
		return Frame{}, err
	}

	buttons := state.Buttons
	if len(buttons) > config.MaxFrameButtons {
		slog.Warn("frame has too many buttons, truncating",
			"count", len(buttons),
			"max", config.MaxFrameButtons,
		)
		buttons = buttons[:config.MaxFrameButtons]
	}

	tags := make([]ButtonTag, 0, len(buttons))
	for i, b := range buttons {
		tags = append(tags, ButtonTag{
			Index:  i + 1,
			Label:  b.Label,
			Action: b.Action,
			Target: r.Target(b),
		})
	}

	return Frame{
		Title:       title,
		Version:     config.FrameVersion,
		Image:       img,
		AspectRatio: config.FrameAspectRatio,
		PostURL:     r.baseURL + "/check",
		InputText:   state.InputPlaceholder,
		Buttons:     tags,
	}, nil
}

// Target resolves a button to the URL the client posts to or opens.
// Post targets are relative to the frame base; "/" is the base itself.
func (r *Renderer) Target(b models.Button) string {
	if b.Action == models.ActionLink {
		return b.Target
	}

	target := r.baseURL
	if b.Target != "" && b.Target != "/" {
		target += b.Target
	}
	if b.Value != "" {
		target += "?value=" + url.QueryEscape(b.Value)
	}
	return target
}

// Render writes f as an HTML document.
func (r *Renderer) Render(w io.Writer, f Frame) error {
	if err := r.page.Execute(w, f); err != nil {
		return fmt.Errorf("render frame: %w", err)
	}
	return nil
}

// ParseAction reads the frame action from r. The text input and button index
// come from the JSON body; the carried button value comes from the "value"
// query parameter. A malformed body yields an action with no input.
func ParseAction(r *http.Request) models.FrameAction {
	action := models.FrameAction{
		ButtonValue: strings.TrimSpace(r.URL.Query().Get("value")),
	}

	if r.Method != http.MethodPost || r.Body == nil {
		return action
	}

	var payload struct {
		UntrustedData struct {
			FID         int64  `json:"fid"`
			ButtonIndex int    `json:"buttonIndex"`
			InputText   string `json:"inputText"`
		} `json:"untrustedData"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		if !errors.Is(err, io.EOF) {
			slog.Warn("malformed frame action body",
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr,
				"error", err,
			)
		}
		return action
	}

	action.Submitted = true
	action.FID = payload.UntrustedData.FID
	action.ButtonIndex = payload.UntrustedData.ButtonIndex
	action.InputText = strings.TrimSpace(payload.UntrustedData.InputText)

	slog.Debug("frame action parsed",
		"fid", action.FID,
		"buttonIndex", action.ButtonIndex,
		"hasInput", action.InputText != "",
		"hasValue", action.ButtonValue != "",
	)

	return action
}

func encodeDataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
