package gamification

import (
	"sort"
	"strings"
)

type Category string

const (
	CategoryAll     Category = "all"
	CategoryStreak  Category = "streak"
	CategoryXP      Category = "xp"
	CategorySpecial Category = "special"
	CategoryOther   Category = "other"
)

// Rule is an unlock threshold. Zero fields are not thresholds.
type Rule struct {
	Name     string
	Category Category
	XP       int
	Streak   int
}

// Unlocked reports whether xp or streak reaches any threshold of the rule.
func (r Rule) Unlocked(xp, streak int) bool {
	return (r.XP > 0 && xp >= r.XP) || (r.Streak > 0 && streak >= r.Streak)
}

// distance is how far the closest threshold of r is from xp and streak.
func (r Rule) distance(xp, streak int) int {
	d := -1
	if r.XP > 0 {
		d = r.XP - xp
	}
	if r.Streak > 0 && (d < 0 || r.Streak-streak < d) {
		d = r.Streak - streak
	}
	if d < 0 {
		return 0
	}
	return d
}

type Style struct {
	Background string `json:"bg"`
	Border     string `json:"border"`
	Icon       string `json:"icon"`
}

var rules = []Rule{
	{Name: "Consistency Champ", Category: CategoryStreak, Streak: 5},
	{Name: "Streak Star", Category: CategoryStreak, Streak: 10},
	{Name: "Streak Legend", Category: CategoryStreak, Streak: 30},
	{Name: "Unstoppable", Category: CategoryStreak, Streak: 100},

	{Name: "Layout Sprout", Category: CategoryXP, XP: 10},
	{Name: "Progress Pioneer", Category: CategoryXP, XP: 15},
	{Name: "Going Strong", Category: CategoryXP, XP: 25},
	{Name: "Rising Coder", Category: CategoryXP, XP: 50},
	{Name: "Challenge Master", Category: CategoryXP, XP: 100},
	{Name: "XP Grinder", Category: CategoryXP, XP: 500},
	{Name: "Elite Learner", Category: CategoryXP, XP: 1000},
	{Name: "Knowledge Titan", Category: CategoryXP, XP: 5000},

	{Name: "Fast Starter", Category: CategorySpecial, Streak: 1},
	{Name: "Dedication Pro", Category: CategorySpecial, XP: 500, Streak: 10},
	{Name: "Ultimate Scholar", Category: CategorySpecial, XP: 2000, Streak: 50},
}

var styles = map[string]Style{
	"Consistency Champ": {"bg-orange-500/20", "border-orange-400", "text-orange-300"},
	"Streak Star":       {"bg-yellow-500/20", "border-yellow-400", "text-yellow-300"},
	"Streak Legend":     {"bg-red-500/20", "border-red-400", "text-red-300"},
	"Unstoppable":       {"bg-pink-500/20", "border-pink-400", "text-pink-300"},
	"Layout Sprout":     {"bg-green-500/20", "border-green-400", "text-green-300"},
	"Progress Pioneer":  {"bg-teal-500/20", "border-teal-400", "text-teal-300"},
	"Going Strong":      {"bg-sky-500/20", "border-sky-400", "text-sky-300"},
	"Rising Coder":      {"bg-blue-500/20", "border-blue-400", "text-blue-300"},
	"Challenge Master":  {"bg-indigo-500/20", "border-indigo-400", "text-indigo-300"},
	"XP Grinder":        {"bg-violet-500/20", "border-violet-400", "text-violet-300"},
	"Elite Learner":     {"bg-purple-500/20", "border-purple-400", "text-purple-300"},
	"Knowledge Titan":   {"bg-fuchsia-500/20", "border-fuchsia-400", "text-fuchsia-300"},
	"Fast Starter":      {"bg-lime-500/20", "border-lime-400", "text-lime-300"},
	"Dedication Pro":    {"bg-rose-500/20", "border-rose-400", "text-rose-300"},
	"Ultimate Scholar":  {"bg-emerald-500/20", "border-emerald-400", "text-emerald-300"},
}

var defaultStyle = Style{"bg-gray-600/30", "border-gray-400", "text-gray-300"}

var icons = map[string]string{
	"Consistency Champ": "Flame",
	"Streak Star":       "Flame",
	"Streak Legend":     "Flame",
	"Unstoppable":       "Flame",
	"Layout Sprout":     "Star",
	"Progress Pioneer":  "Star",
	"Going Strong":      "Star",
	"Rising Coder":      "Star",
	"Challenge Master":  "Target",
	"XP Grinder":        "Zap",
	"Elite Learner":     "Crown",
	"Knowledge Titan":   "Diamond",
	"Fast Starter":      "Rocket",
	"Dedication Pro":    "Trophy",
	"Ultimate Scholar":  "Medal",
}

const defaultIcon = "Award"

// Badge is a badge name decorated for display.
type Badge struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Icon     string   `json:"icon"`
	Style    Style    `json:"style"`
}

// Rules returns a copy of the unlock table in display order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

func ruleFor(name string) (Rule, bool) {
	for _, r := range rules {
		if r.Name == name {
			return r, true
		}
	}
	return Rule{}, false
}

// CategoryOf returns the group a badge belongs to, or CategoryOther for unknown names.
func CategoryOf(name string) Category {
	if r, ok := ruleFor(name); ok {
		return r.Category
	}
	return CategoryOther
}

// Describe looks up the icon and colors of a badge, falling back to the default style.
func Describe(name string) Badge {
	style, ok := styles[name]
	if !ok {
		style = defaultStyle
	}
	icon, ok := icons[name]
	if !ok {
		icon = defaultIcon
	}
	return Badge{
		Name:     name,
		Category: CategoryOf(name),
		Icon:     icon,
		Style:    style,
	}
}

func DescribeAll(names []string) []Badge {
	out := make([]Badge, 0, len(names))
	for _, n := range names {
		out = append(out, Describe(n))
	}
	return out
}

// ParseCategory maps a filter value to a category; unknown values mean all.
func ParseCategory(s string) Category {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryStreak, CategoryXP, CategorySpecial:
		return c
	}
	return CategoryAll
}

// Filter keeps badges whose name contains search (case-insensitive) and that
// belong to category.
func Filter(names []string, search string, category Category) []string {
	search = strings.ToLower(strings.TrimSpace(search))
	out := []string{}
	for _, n := range names {
		if search != "" && !strings.Contains(strings.ToLower(n), search) {
			continue
		}
		if category != CategoryAll && CategoryOf(n) != category {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Locked describes a badge not yet earned and what it still needs.
type Locked struct {
	Badge
	RequiredXP     int `json:"required_xp,omitempty"`
	RequiredStreak int `json:"required_streak,omitempty"`
	MissingXP      int `json:"missing_xp,omitempty"`
	MissingStreak  int `json:"missing_streak,omitempty"`

	distance int
}

// NextBadges lists up to limit rules that are neither earned nor satisfied,
// closest first. A rule with two thresholds is as close as its nearer one.
func NextBadges(xp, streak int, earned []string, limit int) []Locked {
	have := make(map[string]bool, len(earned))
	for _, e := range earned {
		have[e] = true
	}

	out := []Locked{}
	for _, r := range rules {
		if have[r.Name] || r.Unlocked(xp, streak) {
			continue
		}
		l := Locked{Badge: Describe(r.Name), RequiredXP: r.XP, RequiredStreak: r.Streak, distance: r.distance(xp, streak)}
		if r.XP > xp {
			l.MissingXP = r.XP - xp
		}
		if r.Streak > streak {
			l.MissingStreak = r.Streak - streak
		}
		out = append(out, l)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].distance < out[j].distance
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
