package acmi

// Color is an object's display color. Unknown names round-trip unchanged.
type Color string

const (
	ColorRed    Color = "Red"
	ColorOrange Color = "Orange"
	ColorGreen  Color = "Green"
	ColorBlue   Color = "Blue"
	ColorViolet Color = "Violet"
	ColorGrey   Color = "Grey"
)

// Known reports whether c is one of the named colors.
func (c Color) Known() bool {
	switch c {
	case ColorRed, ColorOrange, ColorGreen, ColorBlue, ColorViolet, ColorGrey:
		return true
	}
	return false
}
