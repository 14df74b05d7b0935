package app

import "image"

// Button labels.
const (
	ButtonStart         = "Start"
	ButtonQuit          = "Quit"
	ButtonSwitchModel   = "Switch Model"
	ButtonAddProp       = "Add Prop"
	ButtonAddBackground = "Add Background"
	ButtonChangeScene   = "Change Scene"
	ButtonCloseMenu     = "Close Menu"
)

const (
	popupWidth   = 400
	popupHeight  = 450
	popupButtonH = 50
	popupSpacing = 65
	menuButtonW  = 300
	menuButtonH  = 50
	renameBoxW   = 300
	renameBoxH   = 40
)

// Button is a clickable rectangle.
type Button struct {
	Label string
	Rect  image.Rectangle
}

// Layout is the static screen geometry for a window size.
type Layout struct {
	Width, Height int
	Menu          []Button
	Popup         image.Rectangle
	PopupButtons  []Button
	RenameBox     image.Rectangle
}

func rect(x, y, w, h int) image.Rectangle {
	return image.Rect(x, y, x+w, y+h)
}

// NewLayout computes button and popup positions for a w×h window.
func NewLayout(w, h int) Layout {
	px := (w - popupWidth) / 2
	py := (h - popupHeight) / 2
	bw := popupWidth - 80
	bx := px + (popupWidth-bw)/2
	by := py + 80

	return Layout{
		Width:  w,
		Height: h,
		Menu: []Button{
			{ButtonStart, rect(w/2-150, h/2, menuButtonW, menuButtonH)},
			{ButtonQuit, rect(w/2-150, h/2+70, menuButtonW, menuButtonH)},
		},
		Popup: rect(px, py, popupWidth, popupHeight),
		PopupButtons: []Button{
			{ButtonSwitchModel, rect(bx, by, bw, popupButtonH)},
			{ButtonAddProp, rect(bx, by+popupSpacing, bw, popupButtonH)},
			{ButtonAddBackground, rect(bx, by+2*popupSpacing, bw, popupButtonH)},
			{ButtonChangeScene, rect(bx, by+3*popupSpacing, bw, popupButtonH)},
			{ButtonCloseMenu, rect(bx, py+popupHeight-popupButtonH-30, bw, popupButtonH)},
		},
		RenameBox: rect(w/2-150, h/2-20, renameBoxW, renameBoxH),
	}
}

// hit returns the label of the button under p, if any.
func hit(buttons []Button, p image.Point) (string, bool) {
	for _, b := range buttons {
		if p.In(b.Rect) {
			return b.Label, true
		}
	}
	return "", false
}
