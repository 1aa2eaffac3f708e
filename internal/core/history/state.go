package history

// StateType labels an undo step for the history view. It has no effect on
// what a snapshot captures.
type StateType int

const (
	AddEditActions StateType = iota
	AddEditAction
	AddAction
	RemoveActions
	RemoveAction
	MouseMovedActions
	ActionsMoved
	CutSelection
	RemoveSelection
	PasteSelection
	EqualizeActions
	InvertActions
	IsolateAction
	TopPoints
	MidPoints
	BottomPoints
	GenerateActions
	FrameAlign
	RangeExtend
	RepeatStroke
	MoveActionToCurrentPos
	Simplify
	Extension
	ReloadFromDisk
	SetActions
)

var stateLabels = [...]string{
	AddEditActions:         "Add/Edit actions",
	AddEditAction:          "Add/Edit action",
	AddAction:              "Add action",
	RemoveActions:          "Remove actions",
	RemoveAction:           "Remove action",
	MouseMovedActions:      "Mouse moved actions",
	ActionsMoved:           "Actions moved",
	CutSelection:           "Cut selection",
	RemoveSelection:        "Remove selection",
	PasteSelection:         "Paste selection",
	EqualizeActions:        "Equalize",
	InvertActions:          "Invert",
	IsolateAction:          "Isolate",
	TopPoints:              "Top points",
	MidPoints:              "Mid points",
	BottomPoints:           "Bottom points",
	GenerateActions:        "Generate actions",
	FrameAlign:             "Frame align",
	RangeExtend:            "Range extend",
	RepeatStroke:           "Repeat stroke",
	MoveActionToCurrentPos: "Move to current position",
	Simplify:               "Simplify",
	Extension:              "Extension",
	ReloadFromDisk:         "Reload from disk",
	SetActions:             "Set actions",
}

func (s StateType) String() string {
	if s < 0 || int(s) >= len(stateLabels) {
		return "Unknown"
	}
	return stateLabels[s]
}
