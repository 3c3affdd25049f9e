package frame

import (
	"bytes"
	"fmt"

	"github.com/Fantasim/sazonframe/internal/config"
	"github.com/Fantasim/sazonframe/internal/view"
)

type lineStyle struct {
	size   int
	weight string
	gap    int // space above the line
}

var lineStyles = map[view.LineStyle]lineStyle{
	view.StyleHeading: {size: 56, weight: "bold", gap: 0},
	view.StyleBody:    {size: 38, weight: "normal", gap: 28},
	view.StyleDetail:  {size: 28, weight: "normal", gap: 22},
	view.StyleSmall:   {size: 24, weight: "normal", gap: 18},
	view.StyleAlert:   {size: 20, weight: "normal", gap: 18},
}

const (
	darkText  = "#000000"
	lightText = "#FFFFFF"
	alertText = "#FF0000"
)

type imageLine struct {
	Text   string
	Y      int
	Size   int
	Weight string
	Color  string
}

type imageData struct {
	Width           int
	Height          int
	CenterX         int
	Background      string
	BackgroundImage string
	Lines           []imageLine
}

// Image renders state as a FrameImageWidth x FrameImageHeight SVG and returns
// it as a base64 data URI.
func (r *Renderer) Image(state view.State) (string, error) {
	var buf bytes.Buffer
	if err := r.image.Execute(&buf, layout(state)); err != nil {
		return "", fmt.Errorf("render image: %w", err)
	}
	return encodeDataURI("image/svg+xml", buf.Bytes()), nil
}

// layout stacks the state's lines and centres the block vertically.
func layout(state view.State) imageData {
	textColor := darkText
	if state.BackgroundImage != "" {
		textColor = lightText
	}

	rows := state.Lines()
	lines := make([]imageLine, 0, len(rows))

	height := 0
	for i, row := range rows {
		st := lineStyles[row.Style]
		if i > 0 {
			height += st.gap
		}
		height += st.size

		color := textColor
		if row.Style == view.StyleAlert {
			color = alertText
		}

		lines = append(lines, imageLine{
			Text:   row.Text,
			Y:      height, // baseline relative to the block top
			Size:   st.size,
			Weight: st.weight,
			Color:  color,
		})
	}

	top := (config.FrameImageHeight - height) / 2
	for i := range lines {
		lines[i].Y += top
	}

	return imageData{
		Width:           config.FrameImageWidth,
		Height:          config.FrameImageHeight,
		CenterX:         config.FrameImageWidth / 2,
		Background:      state.BackgroundColor,
		BackgroundImage: state.BackgroundImage,
		Lines:           lines,
	}
}
