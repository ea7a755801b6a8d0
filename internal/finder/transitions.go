package finder

import (
	"encoding/json"
	"fmt"
)

// Step is a stage of the progressive selector.
type Step int

const (
	StepProvince Step = iota
	StepDistrict
	StepBranch
	StepServices
)

func (s Step) String() string {
	switch s {
	case StepProvince:
		return "province"
	case StepDistrict:
		return "district"
	case StepBranch:
		return "branch"
	case StepServices:
		return "services"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// MarshalJSON renders the step by name.
func (s Step) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

// ParseStep is the inverse of Step.String.
func ParseStep(raw string) (Step, error) {
	for _, s := range []Step{StepProvince, StepDistrict, StepBranch, StepServices} {
		if s.String() == raw {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown step %q", raw)
}

// Action is a user intent applied to the selector.
type Action string

const (
	ActionSelectProvince Action = "select_province"
	ActionSelectDistrict Action = "select_district"
	ActionSelectBranch   Action = "select_branch"
	ActionBack           Action = "back"
	ActionBook           Action = "book"
)

var transitionMap = map[Action][]Step{
	ActionSelectProvince: {StepProvince},
	ActionSelectDistrict: {StepDistrict},
	ActionSelectBranch:   {StepBranch},
	ActionBack:           {StepDistrict, StepBranch, StepServices},
	ActionBook:           {StepServices},
}

// ValidTransition reports whether action may be applied while at step from.
func ValidTransition(action Action, from Step) bool {
	allowed, ok := transitionMap[action]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == from {
			return true
		}
	}
	return false
}

// ValidBack reports whether going back from one step to another is allowed:
// only to a strictly earlier step.
func ValidBack(from, to Step) bool {
	return ValidTransition(ActionBack, from) && to >= StepProvince && to < from
}
