package ui

import (
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"forecastconsole/internal/api"
	"forecastconsole/internal/jsonutil"
	"forecastconsole/internal/schedule"
	"forecastconsole/internal/table"
)

// PageSpec describes a resource page: which collection it lists, how its
// columns render, and how its records are edited.
type PageSpec struct {
	Page     Page
	Title    string
	Singular string
	Resource api.Resource
	IDKey    string
	NameKey  string

	// Related collections are fetched alongside the page to resolve names
	// in columns and select fields.
	Related []api.Resource

	Columns func(env ColumnEnv) []table.Column
	Fields  []Field

	// Derive adds computed fields to a copy of each loaded record.
	Derive func(env ColumnEnv, rec table.Record) table.Record

	CanCreate bool
	CanEdit   bool
	CanDelete bool

	SearchPlaceholder string
}

func idColumn(key string) table.Column {
	return table.Column{Key: key, Title: "ID", Sortable: true}
}

func textColumn(key, title string) table.Column {
	return table.Column{Key: key, Title: title, Sortable: true}
}

func optionsFrom(r api.Resource, idKey string, label func(table.Record) string) func(Lookups) []Option {
	return func(lk Lookups) []Option {
		out := make([]Option, 0, len(lk[r]))
		for _, rec := range lk[r] {
			out = append(out, Option{Label: label(rec), Value: rec[idKey]})
		}
		return out
	}
}

func field(key string) func(table.Record) string {
	return func(rec table.Record) string { return jsonutil.ToString(rec[key]) }
}

func promptLabel(rec table.Record) string {
	return fmt.Sprintf("%s (v%s)", jsonutil.ToString(rec["prompt_name"]), jsonutil.ToString(rec["prompt_version"]))
}

// promptsOfType lists the prompts whose prompt_type is kind.
func promptsOfType(kind string) func(Lookups) []Option {
	return func(lk Lookups) []Option {
		var out []Option
		for _, rec := range lk[api.Prompts] {
			if jsonutil.ToString(rec["prompt_type"]) == kind {
				out = append(out, Option{Label: promptLabel(rec), Value: rec["prompt_id"]})
			}
		}
		return out
	}
}

func staticOptions(values ...string) func(Lookups) []Option {
	return func(Lookups) []Option {
		out := make([]Option, len(values))
		for i, v := range values {
			out[i] = Option{Label: v, Value: v}
		}
		return out
	}
}

// PageSpecs returns the specs of every resource page, keyed by page.
func PageSpecs() map[Page]*PageSpec {
	specs := []*PageSpec{
		assetTypesSpec(),
		assetsSpec(),
		llmsSpec(),
		promptsSpec(),
		queryTypesSpec(),
		schedulesSpec(),
		querySchedulesSpec(),
		surveysSpec(),
		queriesSpec(),
		forecastsSpec(),
		rulesSpec(),
		functionsSpec(),
	}
	out := make(map[Page]*PageSpec, len(specs))
	for _, s := range specs {
		out[s.Page] = s
	}
	return out
}

func crud(s *PageSpec) *PageSpec {
	s.CanCreate, s.CanEdit, s.CanDelete = true, true, true
	return s
}

func assetTypesSpec() *PageSpec {
	return crud(&PageSpec{
		Page: PageAssetTypes, Title: "Asset Types", Singular: "Asset Type",
		Resource: api.AssetTypes, IDKey: "asset_type_id", NameKey: "asset_type_name",
		Columns: func(ColumnEnv) []table.Column {
			return []table.Column{
				idColumn("asset_type_id"),
				textColumn("asset_type_name", "Name"),
				{Key: "description", Title: "Description", Render: orDash},
			}
		},
		Fields: []Field{
			{Key: "asset_type_name", Label: "Name", Kind: FieldText, Required: true, Placeholder: "Cryptocurrency"},
			{Key: "description", Label: "Description", Kind: FieldMultiline},
		},
	})
}

func assetsSpec() *PageSpec {
	return crud(&PageSpec{
		Page: PageAssets, Title: "Assets", Singular: "Asset",
		Resource: api.Assets, IDKey: "asset_id", NameKey: "asset_name",
		Related: []api.Resource{api.AssetTypes},
		Columns: func(env ColumnEnv) []table.Column {
			return []table.Column{
				idColumn("asset_id"),
				textColumn("asset_name", "Name"),
				textColumn("asset_symbol", "Symbol"),
				{Key: "asset_type_id", Title: "Asset Type", Sortable: true,
					Render: lookupName(env, api.AssetTypes, "asset_type_id", "asset_type_name", unknown)},
				{Key: "description", Title: "Description", Render: orDash},
			}
		},
		Fields: []Field{
			{Key: "asset_name", Label: "Name", Kind: FieldText, Required: true, Placeholder: "Bitcoin"},
			{Key: "asset_symbol", Label: "Symbol", Kind: FieldText, Required: true, Placeholder: "BTC"},
			{Key: "asset_type_id", Label: "Asset Type", Kind: FieldSelect, Required: true,
				Options: optionsFrom(api.AssetTypes, "asset_type_id", field("asset_type_name"))},
			{Key: "description", Label: "Description", Kind: FieldMultiline},
		},
		SearchPlaceholder: "Search assets...",
	})
}

func llmsSpec() *PageSpec {
	return crud(&PageSpec{
		Page: PageLLMs, Title: "LLMs", Singular: "LLM",
		Resource: api.LLMs, IDKey: "llm_id", NameKey: "llm_name",
		Columns: func(ColumnEnv) []table.Column {
			return []table.Column{
				idColumn("llm_id"),
				textColumn("llm_name", "Name"),
				textColumn("llm_model", "Model"),
				{Key: "api_url", Title: "API URL", Render: orDash},
			}
		},
		Fields: []Field{
			{Key: "llm_name", Label: "Name", Kind: FieldText, Required: true, Placeholder: "OpenAI"},
			{Key: "llm_model", Label: "Model", Kind: FieldText, Required: true, Placeholder: "gpt-4o"},
			{Key: "api_url", Label: "API URL", Kind: FieldText, Required: true, Placeholder: "https://api.openai.com/v1/completions"},
			{Key: "api_key_secret", Label: "API key secret name", Kind: FieldText},
		},
	})
}

func promptsSpec() *PageSpec {
	return crud(&PageSpec{
		Page: PagePrompts, Title: "Prompts", Singular: "Prompt",
		Resource: api.Prompts, IDKey: "prompt_id", NameKey: "prompt_name",
		Related: []api.Resource{api.LLMs},
		Columns: func(env ColumnEnv) []table.Column {
			return []table.Column{
				idColumn("prompt_id"),
				{Key: "llm_id", Title: "LLM", Sortable: true,
					Render: lookupName(env, api.LLMs, "llm_id", "llm_name", labelled("LLM"))},
				textColumn("prompt_name", "Name"),
				textColumn("prompt_type", "Type"),
				{Key: "prompt_text", Title: "Content Preview", Render: preview(100)},
				textColumn("prompt_version", "Version"),
			}
		},
		Fields: []Field{
			{Key: "llm_id", Label: "LLM", Kind: FieldSelect, Required: true,
				Options: optionsFrom(api.LLMs, "llm_id", field("llm_name"))},
			{Key: "prompt_name", Label: "Name", Kind: FieldText, Required: true},
			{Key: "prompt_type", Label: "Type", Kind: FieldSelect, Required: true, Default: "live",
				Options: staticOptions("live", "forecast")},
			{Key: "prompt_text", Label: "Prompt", Kind: FieldMultiline, Required: true},
			{Key: "followup_llm", Label: "Follow-up LLM", Kind: FieldSelect,
				Options: optionsFrom(api.LLMs, "llm_id", field("llm_name"))},
			{Key: "prompt_version", Label: "Version", Kind: FieldNumber, Required: true, Min: atLeast(1), Default: 1},
		},
	})
}

func queryTypesSpec() *PageSpec {
	return crud(&PageSpec{
		Page: PageQueryTypes, Title: "Query Types", Singular: "Query Type",
		Resource: api.QueryTypes, IDKey: "query_type_id", NameKey: "query_type_name",
		Columns: func(ColumnEnv) []table.Column {
			return []table.Column{
				idColumn("query_type_id"),
				textColumn("query_type_name", "Name"),
				{Key: "description", Title: "Description", Render: orDash},
			}
		},
		Fields: []Field{
			{Key: "query_type_name", Label: "Name", Kind: FieldText, Required: true},
			{Key: "description", Label: "Description", Kind: FieldMultiline},
		},
	})
}

func schedulesSpec() *PageSpec {
	return crud(&PageSpec{
		Page: PageSchedules, Title: "Schedules", Singular: "Schedule",
		Resource: api.Schedules, IDKey: "schedule_id", NameKey: "schedule_name",
		Columns: func(ColumnEnv) []table.Column {
			return []table.Column{
				idColumn("schedule_id"),
				textColumn("schedule_name", "Name"),
				textColumn("schedule_version", "Version"),
				textColumn("initial_query_time", "Query Time"),
				textColumn("timezone", "Timezone"),
				{Key: "description", Title: "Description", Render: orDash},
			}
		},
		Fields: []Field{
			{Key: "schedule_name", Label: "Name", Kind: FieldText, Required: true},
			{Key: "schedule_version", Label: "Version", Kind: FieldNumber, Required: true, Min: atLeast(1), Default: 1},
			{Key: "initial_query_time", Label: "Initial query time", Kind: FieldTime, Required: true, Placeholder: "09:00:00"},
			{Key: "timezone", Label: "Timezone", Kind: FieldText, Required: true, Default: "UTC"},
			{Key: "description", Label: "Description", Kind: FieldMultiline},
		},
	})
}

func querySchedulesSpec() *PageSpec {
	return crud(&PageSpec{
		Page: PageQuerySchedules, Title: "Query Schedules", Singular: "Query Schedule",
		Resource: api.QuerySchedules, IDKey: "query_schedule_id",
		Related: []api.Resource{api.Schedules, api.QueryTypes},
		Columns: func(env ColumnEnv) []table.Column {
			return []table.Column{
				idColumn("query_schedule_id"),
				{Key: "schedule_id", Title: "Schedule", Sortable: true,
					Render: lookupName(env, api.Schedules, "schedule_id", "schedule_name", labelled("Schedule"))},
				{Key: "query_type_id", Title: "Query Type", Sortable: true,
					Render: lookupName(env, api.QueryTypes, "query_type_id", "query_type_name", labelled("Type"))},
				textColumn("delay_hours", "Query Delay (Hours)"),
				{Key: "paired_followup_delay_hours", Title: "Forecast Delay (Hours)", Sortable: true, Render: orDash},
			}
		},
		Fields: []Field{
			{Key: "schedule_id", Label: "Schedule", Kind: FieldSelect, Required: true,
				Options: optionsFrom(api.Schedules, "schedule_id", field("schedule_name"))},
			{Key: "query_type_id", Label: "Query Type", Kind: FieldSelect, Required: true,
				Options: optionsFrom(api.QueryTypes, "query_type_id", field("query_type_name"))},
			{Key: "delay_hours", Label: "Query delay (hours)", Kind: FieldNumber, Required: true, Min: atLeast(0), Default: 0},
			{Key: "paired_followup_delay_hours", Label: "Forecast delay (hours)", Kind: FieldOptionalNumber, Min: atLeast(0)},
		},
	})
}

func surveysSpec() *PageSpec {
	return crud(&PageSpec{
		Page: PageSurveys, Title: "Surveys", Singular: "Survey",
		Resource: api.Surveys, IDKey: "survey_id",
		Related: []api.Resource{api.Assets, api.Schedules, api.Prompts, api.LLMs},
		Columns: func(env ColumnEnv) []table.Column {
			lk := env.Lookups
			return []table.Column{
				idColumn("survey_id"),
				{Key: "asset_id", Title: "Asset", Sortable: true,
					Render: lookupName(env, api.Assets, "asset_id", "asset_name", unknown)},
				{Key: "llm_name", Title: "LLM", Render: func(_ any, rec table.Record) string {
					prompt, ok := lk.Find(api.Prompts, "prompt_id", rec["live_prompt_id"])
					if !ok {
						return "Unknown"
					}
					if name := lk.Name(api.LLMs, "llm_id", "llm_name", prompt["llm_id"]); name != "" {
						return name
					}
					return "Unknown LLM"
				}},
				{Key: "schedule_id", Title: "Schedule", Sortable: true,
					Render: lookupName(env, api.Schedules, "schedule_id", "schedule_name", labelled("Schedule"))},
				textColumn("live_prompt_id", "Live Prompt"),
				textColumn("forecast_prompt_id", "Forecast Prompt"),
				{Key: "prompt_version", Title: "Version", Render: func(_ any, rec table.Record) string {
					prompt, ok := lk.Find(api.Prompts, "prompt_id", rec["live_prompt_id"])
					if !ok {
						return "Unknown"
					}
					return "v" + jsonutil.ToString(prompt["prompt_version"])
				}},
				{Key: "is_active", Title: "Status", Sortable: true, Render: activeBadge},
			}
		},
		Fields: []Field{
			{Key: "asset_id", Label: "Asset", Kind: FieldSelect, Required: true,
				Options: optionsFrom(api.Assets, "asset_id", field("asset_name"))},
			{Key: "schedule_id", Label: "Schedule", Kind: FieldSelect, Required: true,
				Options: optionsFrom(api.Schedules, "schedule_id", field("schedule_name"))},
			{Key: "live_prompt_id", Label: "Live prompt", Kind: FieldSelect, Required: true,
				Options: promptsOfType("live")},
			{Key: "forecast_prompt_id", Label: "Forecast prompt", Kind: FieldSelect, Required: true,
				Options: promptsOfType("forecast")},
			{Key: "is_active", Label: "Active", Kind: FieldBool, Default: true},
		},
	})
}

func queriesSpec() *PageSpec {
	return &PageSpec{
		Page: PageQueries, Title: "Queries", Singular: "Query",
		Resource: api.Queries, IDKey: "query_id",
		Related:   []api.Resource{api.Surveys, api.Assets, api.AssetTypes, api.QueryTypes},
		CanDelete: true,
		Columns: func(env ColumnEnv) []table.Column {
			lk := env.Lookups
			asset := func(rec table.Record) (table.Record, bool) {
				survey, ok := lk.Find(api.Surveys, "survey_id", rec["survey_id"])
				if !ok {
					return nil, false
				}
				return lk.Find(api.Assets, "asset_id", survey["asset_id"])
			}
			return []table.Column{
				idColumn("query_id"),
				{Key: "survey_id", Title: "Asset", Sortable: true, Render: func(_ any, rec table.Record) string {
					if a, ok := asset(rec); ok {
						return jsonutil.ToString(a["asset_name"])
					}
					return "Unknown"
				}},
				{Key: "asset_type", Title: "Asset Type", Render: func(_ any, rec table.Record) string {
					if a, ok := asset(rec); ok {
						if name := lk.Name(api.AssetTypes, "asset_type_id", "asset_type_name", a["asset_type_id"]); name != "" {
							return name
						}
					}
					return "Unknown"
				}},
				{Key: "query_type_id", Title: "Query Type", Sortable: true,
					Render: lookupName(env, api.QueryTypes, "query_type_id", "query_type_name", labelled("Type"))},
				{Key: "scheduled_for_utc", Title: "Scheduled For", Sortable: true, Render: timestamp},
				{Key: "executed_at_utc", Title: "Executed At", Sortable: true, Render: timestamp},
				{Key: "status", Title: "Status", Sortable: true, Render: badge(queryStatusColors)},
				{Key: "recommendation", Title: "Recommendation", Sortable: true, Render: preview(30)},
				{Key: "confidence", Title: "Confidence", Sortable: true, Render: percent},
				{Key: "rationale", Title: "Rationale", Render: preview(40)},
				{Key: "source", Title: "Source", Render: orDash},
			}
		},
		SearchPlaceholder: "Search queries...",
	}
}

func forecastsSpec() *PageSpec {
	return &PageSpec{
		Page: PageForecasts, Title: "Forecasts", Singular: "Forecast",
		Resource: api.Forecasts, IDKey: "forecast_id",
		CanDelete: true,
		Columns: func(ColumnEnv) []table.Column {
			return []table.Column{
				idColumn("forecast_id"),
				textColumn("query_id", "Query"),
				textColumn("horizon_type", "Horizon"),
				{Key: "action", Title: "Action", Sortable: true, Render: badge(actionColors)},
				{Key: "confidence", Title: "Confidence", Sortable: true, Render: percent},
				{Key: "reason", Title: "Reason", Render: preview(60)},
			}
		},
		Derive: func(_ ColumnEnv, rec table.Record) table.Record {
			out := maps.Clone(rec)
			fv := forecastValue(rec["forecast_value"])
			for _, k := range []string{"action", "confidence", "reason"} {
				out[k] = fv[k]
			}
			return out
		},
	}
}

// forecastValue decodes forecast_value, which the backend stores either as
// a JSON object or as its string encoding.
func forecastValue(v any) map[string]any {
	switch fv := v.(type) {
	case map[string]any:
		return fv
	case string:
		var m map[string]any
		if err := json.Unmarshal([]byte(fv), &m); err == nil {
			return m
		}
	}
	return map[string]any{}
}

func rulesSpec() *PageSpec {
	return &PageSpec{
		Page: PageRules, Title: "Scheduler Rules", Singular: "Rule",
		Resource: api.Rules, NameKey: "Name",
		Columns: func(env ColumnEnv) []table.Column {
			return []table.Column{
				textColumn("Name", "Name"),
				{Key: "State", Title: "State", Sortable: true, Render: badge(ruleStateColors)},
				textColumn("ScheduleExpression", "Expression"),
				textColumn("Schedule", "Schedule"),
				{Key: "NextRun", Title: "Next Run", Sortable: true, Render: timestamp},
				{Key: "EventBusName", Title: "Event Bus", Render: orDash},
			}
		},
		Derive: func(env ColumnEnv, rec table.Record) table.Record {
			out := maps.Clone(rec)
			expr := jsonutil.ToString(rec["ScheduleExpression"])
			out["Schedule"] = schedule.Describe(expr)
			out["NextRun"] = nil
			if next, err := schedule.Next(expr, env.Now); err == nil {
				out["NextRun"] = next.UTC().Format(time.RFC3339)
			}
			return out
		},
		SearchPlaceholder: "Search rules...",
	}
}

func functionsSpec() *PageSpec {
	return &PageSpec{
		Page: PageFunctions, Title: "Functions", Singular: "Function",
		Resource: api.Functions, NameKey: "FunctionName",
		Columns: func(env ColumnEnv) []table.Column {
			return []table.Column{
				textColumn("FunctionName", "Name"),
				textColumn("Runtime", "Runtime"),
				{Key: "MemorySize", Title: "Memory", Sortable: true, Render: withUnit(" MB")},
				{Key: "Timeout", Title: "Timeout", Sortable: true, Render: withUnit("s")},
				{Key: "CodeSize", Title: "Code Size", Sortable: true, Render: bytesSize},
				{Key: "LastModified", Title: "Last Modified", Sortable: true, Render: relativeTime(env)},
			}
		},
	}
}
