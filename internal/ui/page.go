package ui

// Page identifies one screen of the console. The sidebar lists pages in
// declaration order.
type Page int

const (
	PageDashboard Page = iota
	PageAssetTypes
	PageAssets
	PageLLMs
	PagePrompts
	PageQueryTypes
	PageSchedules
	PageQuerySchedules
	PageSurveys
	PageQueries
	PageForecasts
	PageRules
	PageFunctions
)

// allPages is the sidebar and tab order.
var allPages = []Page{
	PageDashboard,
	PageAssetTypes,
	PageAssets,
	PageLLMs,
	PagePrompts,
	PageQueryTypes,
	PageSchedules,
	PageQuerySchedules,
	PageSurveys,
	PageQueries,
	PageForecasts,
	PageRules,
	PageFunctions,
}

func (p Page) String() string {
	switch p {
	case PageDashboard:
		return "Dashboard"
	case PageAssetTypes:
		return "Asset Types"
	case PageAssets:
		return "Assets"
	case PageLLMs:
		return "LLMs"
	case PagePrompts:
		return "Prompts"
	case PageQueryTypes:
		return "Query Types"
	case PageSchedules:
		return "Schedules"
	case PageQuerySchedules:
		return "Query Schedules"
	case PageSurveys:
		return "Surveys"
	case PageQueries:
		return "Queries"
	case PageForecasts:
		return "Forecasts"
	case PageRules:
		return "Scheduler Rules"
	case PageFunctions:
		return "Functions"
	default:
		return "Unknown"
	}
}

// JumpKey is the key that follows "SPC g" to open the page.
func (p Page) JumpKey() string {
	switch p {
	case PageDashboard:
		return "d"
	case PageAssetTypes:
		return "t"
	case PageAssets:
		return "a"
	case PageLLMs:
		return "l"
	case PagePrompts:
		return "p"
	case PageQueryTypes:
		return "y"
	case PageSchedules:
		return "s"
	case PageQuerySchedules:
		return "c"
	case PageSurveys:
		return "v"
	case PageQueries:
		return "q"
	case PageForecasts:
		return "f"
	case PageRules:
		return "r"
	case PageFunctions:
		return "n"
	default:
		return ""
	}
}
