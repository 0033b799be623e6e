package tui

type View int

const (
	ViewLoading View = iota
	ViewSearch
	ViewResults
	ViewLocalePicker
	ViewCategoryPicker
	ViewStatusPicker
	ViewLinks
)

// ResultState is what the result area currently shows. Exactly one state
// applies at a time.
type ResultState int

const (
	ResultIdle ResultState = iota
	ResultLoading
	ResultError
	ResultEmpty
	ResultList
)

func (s ResultState) String() string {
	switch s {
	case ResultIdle:
		return "idle"
	case ResultLoading:
		return "loading"
	case ResultError:
		return "error"
	case ResultEmpty:
		return "empty"
	case ResultList:
		return "list"
	default:
		return "unknown"
	}
}
