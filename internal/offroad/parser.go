package offroad

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

// Road condition labels, in the order they are reported.
const (
	RoadMuddy    = "muddy terrain"
	RoadGravel   = "gravel section"
	RoadDamage   = "road damage"
	RoadHighRisk = "high-risk section"
)

// Facts are the transport parameters recovered from a task description.
// Empty strings mean the fact was not found.
type Facts struct {
	Destination    string   `json:"destination"`
	Cargo          string   `json:"cargo"`
	TimeLimit      string   `json:"time_limit"`
	RoadConditions []string `json:"road_conditions"`
}

var (
	destinationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`向([^\s,，]+)运输`),
		regexp.MustCompile(`到([^\s,，]+)运输`),
		regexp.MustCompile(`前往([^\s,，]+)`),
		regexp.MustCompile(`位置([^\s,，]+)`),
		regexp.MustCompile(`(?i)\bheading to ([^\s,.]+)`),
		regexp.MustCompile(`(?i)\bdeliver\b.*?\bto ([^\s,.]+)`),
		regexp.MustCompile(`(?i)\bposition ([^\s,.]+)`),
	}
	cargoPatterns = []*regexp.Regexp{
		regexp.MustCompile(`运输([^\s,，]+)`),
		regexp.MustCompile(`物资([^\s,，]+)`),
		regexp.MustCompile(`资源([^\s,，]+)`),
		regexp.MustCompile(`(?i)\btransport ([^\s,.]+)`),
	}
	timePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)小时内`),
		regexp.MustCompile(`(\d+)小时`),
		regexp.MustCompile(`在(\d+)小时`),
		regexp.MustCompile(`(?i)\b(\d+)\s*(?:hours?|hrs?)\b`),
	}
)

type roadRule struct {
	label    string
	keywords []string
}

var roadRules = []roadRule{
	{label: RoadMuddy, keywords: []string{"泥泞", "泥巴", "mud"}},
	{label: RoadGravel, keywords: []string{"碎石", "石子", "gravel"}},
	{label: RoadDamage, keywords: []string{"损毁", "damage"}},
	{label: RoadHighRisk, keywords: []string{"风险", "risk"}},
}

// ParseTaskDescription extracts destination, cargo, time limit and road
// conditions from free text. It never fails; unknown facts stay empty.
func ParseTaskDescription(text string) Facts {
	facts := Facts{RoadConditions: []string{}}
	text = width.Fold.String(strings.TrimSpace(text))
	if text == "" {
		return facts
	}

	facts.Destination = firstMatch(destinationPatterns, text)
	facts.Cargo = firstMatch(cargoPatterns, text)
	if hours := firstMatch(timePatterns, text); hours != "" {
		facts.TimeLimit = hours + "h"
	}

	lower := strings.ToLower(text)
	for _, rule := range roadRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				facts.RoadConditions = append(facts.RoadConditions, rule.label)
				break
			}
		}
	}
	return facts
}

func firstMatch(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}
