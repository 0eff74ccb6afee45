package main

import (
	"bytes"
	"image/color"

	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// PreviewControls keeps the widget handles the app pokes at after build time.
type PreviewControls struct {
	stateGroup      *widget.RadioGroup
	stateButtons    []*widget.Button
	transitionGroup *widget.RadioGroup
	transitionBtns  []*widget.Button
}

func BuildPreviewUI(
	stateNames []string,
	transitionLabels []string,
	onStateSelected func(index int),
	onTransitionSelected func(index int),
	onPlay func(),
	onPause func(),
	onStep func(frames int),
	onDeactivate func(),
	onFieldChanged func(field, value string),
) (*ebitenui.UI, *PreviewControls) {
	ui := &ebitenui.UI{}

	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		panic("Failed to load font: " + err.Error())
	}

	var fontFace text.Face = &text.GoTextFace{Source: s, Size: 14}
	ui.PrimaryTheme = newPreviewTheme(&fontFace)
	controls := &PreviewControls{}

	labelColor := &widget.LabelColor{Idle: color.White, Disabled: color.Gray{Y: 140}}

	leftPanel := widget.NewContainer(
		widget.ContainerOpts.WidgetOpts(widget.WidgetOpts.MinSize(240, 0)),
		widget.ContainerOpts.Layout(
			widget.NewRowLayout(
				widget.RowLayoutOpts.Direction(widget.DirectionVertical),
				widget.RowLayoutOpts.Spacing(6),
			),
		),
		widget.ContainerOpts.BackgroundImage(solidNineSlice(color.RGBA{40, 40, 40, 255})),
	)

	makeToggleGroup := func(title string, names []string, onSelected func(index int)) (*widget.RadioGroup, []*widget.Button) {
		leftPanel.AddChild(widget.NewLabel(
			widget.LabelOpts.Text(title, &fontFace, labelColor),
		))
		var buttons []*widget.Button
		for _, name := range names {
			btn := widget.NewButton(
				widget.ButtonOpts.Image(ui.PrimaryTheme.ButtonTheme.Image),
				widget.ButtonOpts.Text(name, &fontFace, ui.PrimaryTheme.ButtonTheme.TextColor),
				widget.ButtonOpts.ToggleMode(),
				widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.MinSize(200, 28)),
			)
			buttons = append(buttons, btn)
			leftPanel.AddChild(btn)
		}

		elements := make([]widget.RadioGroupElement, 0, len(buttons))
		for _, b := range buttons {
			elements = append(elements, b)
		}
		group := widget.NewRadioGroup(
			widget.RadioGroupOpts.Elements(elements...),
			widget.RadioGroupOpts.ChangedHandler(func(args *widget.RadioGroupChangedEventArgs) {
				if onSelected == nil {
					return
				}
				for idx, b := range buttons {
					if args.Active == b {
						onSelected(idx)
						return
					}
				}
			}),
		)
		return group, buttons
	}

	controls.stateGroup, controls.stateButtons = makeToggleGroup("States", stateNames, onStateSelected)
	controls.transitionGroup, controls.transitionBtns = makeToggleGroup("Transitions", transitionLabels, onTransitionSelected)

	transport := widget.NewContainer(
		widget.ContainerOpts.Layout(
			widget.NewRowLayout(
				widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
				widget.RowLayoutOpts.Spacing(6),
			),
		),
	)
	makeTransportBtn := func(label string, onClick func()) {
		transport.AddChild(widget.NewButton(
			widget.ButtonOpts.Image(ui.PrimaryTheme.ButtonTheme.Image),
			widget.ButtonOpts.Text(label, &fontFace, ui.PrimaryTheme.ButtonTheme.TextColor),
			widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.MinSize(44, 28)),
			widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
				if onClick != nil {
					onClick()
				}
			}),
		))
	}
	makeTransportBtn("Play", onPlay)
	makeTransportBtn("Pause", onPause)
	makeTransportBtn("<", func() {
		if onStep != nil {
			onStep(-1)
		}
	})
	makeTransportBtn(">", func() {
		if onStep != nil {
			onStep(1)
		}
	})
	makeTransportBtn("Stop", onDeactivate)
	leftPanel.AddChild(transport)

	makeField := func(label, field, initial string) {
		leftPanel.AddChild(widget.NewLabel(
			widget.LabelOpts.Text(label, &fontFace, labelColor),
		))
		input := widget.NewTextInput(
			widget.TextInputOpts.WidgetOpts(widget.WidgetOpts.MinSize(200, 28)),
			widget.TextInputOpts.Image(&widget.TextInputImage{
				Idle:     solidNineSlice(color.RGBA{245, 245, 245, 255}),
				Disabled: solidNineSlice(color.RGBA{200, 200, 200, 255}),
			}),
			widget.TextInputOpts.Color(&widget.TextInputColor{Idle: color.Black, Disabled: color.Gray{Y: 120}, Caret: color.Black}),
			widget.TextInputOpts.Face(&fontFace),
			widget.TextInputOpts.ChangedHandler(func(args *widget.TextInputChangedEventArgs) {
				if onFieldChanged != nil {
					onFieldChanged(field, args.InputText)
				}
			}),
		)
		input.SetText(initial)
		leftPanel.AddChild(input)
	}
	makeField("Exit time", "exit_time", "")
	makeField("Transition duration", "duration", "")
	makeField("Blend param", "linear", "0")
	makeField("Direction X", "x", "0")
	makeField("Direction Y", "y", "0")

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	leftPanel.GetWidget().LayoutData = widget.AnchorLayoutData{
		HorizontalPosition: widget.AnchorLayoutPositionStart,
		VerticalPosition:   widget.AnchorLayoutPositionCenter,
		StretchVertical:    true,
	}
	root.AddChild(leftPanel)
	ui.Container = root

	return ui, controls
}
