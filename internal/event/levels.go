package event

import (
	"fmt"
	"strings"
)

// AgeRequirement is ordered from least to most restrictive.
type AgeRequirement int

const (
	AgeEveryone AgeRequirement = iota
	AgeKidsOnly
	AgeTeen
	AgeMature
	AgeAdult
)

var ageLabels = map[string]AgeRequirement{
	"everyone (6+)":            AgeEveryone,
	"kids only (12 and under)": AgeKidsOnly,
	"teen (13+)":               AgeTeen,
	"mature (18+)":             AgeMature,
	"21+":                      AgeAdult,
}

// ParseAgeRequirement accepts the feed's labels, case-insensitively.
func ParseAgeRequirement(label string) (AgeRequirement, error) {
	if a, ok := ageLabels[strings.ToLower(strings.TrimSpace(label))]; ok {
		return a, nil
	}
	return 0, fmt.Errorf("unrecognized age requirement %q", label)
}

func (a AgeRequirement) String() string {
	switch a {
	case AgeEveryone:
		return "everyone"
	case AgeKidsOnly:
		return "kids_only"
	case AgeTeen:
		return "teen"
	case AgeMature:
		return "mature"
	case AgeAdult:
		return "adult"
	}
	return fmt.Sprintf("AgeRequirement(%d)", int(a))
}

// ExperienceLevel is ordered from beginner to expert.
type ExperienceLevel int

const (
	ExperienceNone ExperienceLevel = iota
	ExperienceSome
	ExperienceExpert
)

var experienceLabels = map[string]ExperienceLevel{
	"None (You've never played before - rules will be taught)": ExperienceNone,
	"Some (You've played it a bit and understand the basics)":  ExperienceSome,
	"Expert (You play it regularly and know all the rules)":    ExperienceExpert,
}

// ParseExperienceLevel accepts the feed's full labels, or the bare level name.
func ParseExperienceLevel(label string) (ExperienceLevel, error) {
	label = strings.TrimSpace(label)
	if e, ok := experienceLabels[label]; ok {
		return e, nil
	}
	switch strings.ToLower(label) {
	case "none":
		return ExperienceNone, nil
	case "some":
		return ExperienceSome, nil
	case "expert":
		return ExperienceExpert, nil
	}
	return 0, fmt.Errorf("unrecognized experience level %q", label)
}

func (e ExperienceLevel) String() string {
	switch e {
	case ExperienceNone:
		return "none"
	case ExperienceSome:
		return "some"
	case ExperienceExpert:
		return "expert"
	}
	return fmt.Sprintf("ExperienceLevel(%d)", int(e))
}
