package modality

// #region id
// ID identifies an output channel.
type ID string

const (
	Speech             ID = "speech"
	Pointing           ID = "pointing"
	Gaze               ID = "gaze"
	NoddingHeadshaking ID = "nodding_headshaking"
	Waving             ID = "waving"
	Image              ID = "image"
)

// All lists every known modality in canonical order.
var All = []ID{Speech, Pointing, Gaze, NoddingHeadshaking, Waving, Image}

// #endregion id

// #region style
// Style is how a referenced world object is verbalized.
type Style string

const (
	StyleAttributive Style = "attributive_identifier"
	StyleTheType     Style = "the_type"
	StyleThisType    Style = "this_type"
	StyleThis        Style = "this"
	StyleIt          Style = "it"
)

// Styles lists every presentation style in search order.
var Styles = []Style{StyleAttributive, StyleTheType, StyleThisType, StyleThis, StyleIt}

// Deictic reports whether the style requires a pointing gesture.
func (s Style) Deictic() bool {
	return s == StyleThis || s == StyleThisType
}

// #endregion style

// #region set
// Set is a duplicate-free, canonically ordered group of modalities.
type Set []ID

// #endregion set
