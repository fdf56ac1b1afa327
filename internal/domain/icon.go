package domain

import "strings"

// DefaultIcon is used when a category has no icon or an unknown one
const DefaultIcon = "default"

// CategoryIcons lists the icon tags a category may carry, in display order
var CategoryIcons = []string{
	DefaultIcon,
	"food",
	"transport",
	"shopping",
	"bills",
	"entertainment",
	"healthcare",
	"salary",
	"freelance",
	"investment",
	"gift",
	"education",
	"travel",
	"utilities",
	"other",
}

var knownIcons = func() map[string]struct{} {
	m := make(map[string]struct{}, len(CategoryIcons))
	for _, icon := range CategoryIcons {
		m[icon] = struct{}{}
	}
	return m
}()

// ResolveIcon maps a free-text icon tag onto a known tag
func ResolveIcon(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if _, ok := knownIcons[tag]; ok {
		return tag
	}
	return DefaultIcon
}
