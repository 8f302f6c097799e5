package models

// Color is the gradient token a portfolio card is painted with.
type Color string

const (
	ColorBlue   Color = "from-blue-600/20 to-white/5"
	ColorRed    Color = "from-red-600/20 to-white/5"
	ColorYellow Color = "from-yellow-600/20 to-white/5"
	ColorPurple Color = "from-purple-600/20 to-white/5"
	ColorGreen  Color = "from-green-600/20 to-white/5"

	DefaultColor = ColorBlue
)

// ColorOption is a palette entry as presented by the admin form.
type ColorOption struct {
	Value Color  `json:"value"`
	Label string `json:"label"`
}

// Palette lists the allowed gradients in display order.
var Palette = []ColorOption{
	{Value: ColorBlue, Label: "Blue"},
	{Value: ColorRed, Label: "Red"},
	{Value: ColorYellow, Label: "Yellow"},
	{Value: ColorPurple, Label: "Purple"},
	{Value: ColorGreen, Label: "Green"},
}

func (c Color) Valid() bool {
	for _, option := range Palette {
		if option.Value == c {
			return true
		}
	}
	return false
}
