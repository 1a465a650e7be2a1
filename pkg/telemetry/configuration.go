package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// configurationCategories are reported in this order.
var configurationCategories = []string{"behaviour", "appearance", "newtab", "language", "utility"}

// utilityFields are the only utility settings that are reported.
var utilityFields = []string{"lockPinned", "pinnedEntries", "customCss", "newtabBackground"}

// Setting is one flattened configuration value.
type Setting struct {
	Name  string
	Value string
}

type ruleKey struct {
	path  string
	field string
}

// settingRule rewrites a value before it is reported. keep=false drops the
// field and everything below it.
type settingRule func(v any) (out any, keep bool)

// settingRules replace values that could identify the user with counts or
// presence flags.
var settingRules = map[ruleKey]settingRule{
	{"newtab", "searchEngineCustom"}:    skipSetting,
	{"newtab", "shortcuts"}:             countSetting,
	{"newtab", "website"}:               presenceSetting,
	{"behaviour", "blacklist"}:          countSetting,
	{"behaviour", "whitelist"}:          countSetting,
	{"utility", "pinnedEntries"}:        keyCountSetting,
	{"utility", "customCss"}:            presenceSetting,
	{"utility", "newtabBackground"}:     presenceSetting,
	{"appearance_styles", "fontFamily"}: unquoteSetting,
}

func skipSetting(any) (any, bool) {
	return nil, false
}

func countSetting(v any) (any, bool) {
	switch t := v.(type) {
	case []any:
		return len(t), true
	case map[string]any:
		return len(t), true
	case string:
		return utf8.RuneCountInString(t), true
	}
	return v, true
}

func keyCountSetting(v any) (any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return len(t), true
	case []any:
		return len(t), true
	}
	return v, true
}

func presenceSetting(v any) (any, bool) {
	present := false
	switch t := v.(type) {
	case nil:
	case string:
		present = t != ""
	case []any:
		present = len(t) > 0
	case map[string]any:
		present = len(t) > 0
	default:
		present = true
	}
	return strconv.FormatBool(present), true
}

func unquoteSetting(v any) (any, bool) {
	s, ok := v.(string)
	if !ok {
		return v, true
	}
	s = strings.TrimPrefix(s, "'")
	s = strings.TrimSuffix(s, "'")
	return s, true
}

// flattenConfiguration turns the nested settings of each category into
// "<category>_<field>_<subfield>" settings. Map keys are visited in sorted
// order; list elements use their index as the field name.
func flattenConfiguration(categories map[string]map[string]any) []Setting {
	var out []Setting
	emit := func(name, value string) {
		out = append(out, Setting{Name: name, Value: value})
	}

	for _, category := range configurationCategories {
		values, ok := categories[category]
		if !ok || values == nil {
			continue
		}

		switch category {
		case "newtab":
			// Without the override the remaining new tab settings have no effect.
			if override, ok := values["override"].(bool); ok && !override {
				values = map[string]any{"override": false}
			}
		case "utility":
			picked := map[string]any{}
			for _, field := range utilityFields {
				if v, ok := values[field]; ok {
					picked[field] = v
				}
			}
			values = picked
		}

		flattenInto(category, values, emit)
	}

	return out
}

func flattenInto(path string, values map[string]any, emit func(name, value string)) {
	for _, field := range slices.Sorted(maps.Keys(values)) {
		flattenValue(path, field, values[field], emit)
	}
}

func flattenValue(path, field string, v any, emit func(name, value string)) {
	if rule, ok := settingRules[ruleKey{path, field}]; ok {
		var keep bool
		if v, keep = rule(v); !keep {
			return
		}
	}

	name := path + "_" + field
	switch t := v.(type) {
	case map[string]any:
		flattenInto(name, t, emit)
	case []any:
		for i, elem := range t {
			flattenValue(name, strconv.Itoa(i), elem, emit)
		}
	case string:
		emit(name, t)
	default:
		emit(name, canonicalString(t))
	}
}

func canonicalString(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// readConfiguration loads every reported category from the settings
// provider. Categories that cannot be read are skipped.
func (tc *Client) readConfiguration(ctx context.Context) map[string]map[string]any {
	categories := make(map[string]map[string]any, len(configurationCategories))
	for _, category := range configurationCategories {
		values, ok, err := tc.settings.Category(ctx, category)
		if err != nil {
			tc.logger.Debug("Skipping configuration category", "category", category, "error", err)
			continue
		}
		if ok {
			categories[category] = values
		}
	}
	return categories
}

func (tc *Client) trackConfiguration(ctx context.Context) {
	if tc.settings == nil {
		return
	}

	for _, s := range flattenConfiguration(tc.readConfiguration(ctx)) {
		tc.Track(ctx, KindConfiguration, map[string]any{
			"name":  s.Name,
			"value": s.Value,
		}, false)
	}
}
