package plan

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/varp-dev/varp/internal/varperr"
)

// componentSet decodes an XML element naming a set of component names,
// accepting either nested <component> children or a single
// whitespace/comma-separated text value — the plan-format analogue of
// manifest's scalar-or-sequence normalization.
type componentSet []string

func (cs *componentSet) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var raw struct {
		Components []string `xml:"component"`
		Text       string   `xml:",chardata"`
	}
	if err := d.DecodeElement(&raw, &start); err != nil {
		return err
	}
	if len(raw.Components) > 0 {
		*cs = raw.Components
		return nil
	}
	text := strings.TrimSpace(raw.Text)
	if text == "" {
		*cs = nil
		return nil
	}
	*cs = strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	return nil
}

type xmlCondition struct {
	ID          string `xml:"id,attr"`
	Description string `xml:"description,attr"`
	Verify      string `xml:"verify,attr"`
}

type xmlInvariant struct {
	xmlCondition
	Critical bool `xml:"critical,attr"`
}

type xmlValue struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

type xmlTouches struct {
	Reads  componentSet `xml:"reads"`
	Writes componentSet `xml:"writes"`
}

type xmlBudget struct {
	Tokens  int `xml:"tokens,attr"`
	Minutes int `xml:"minutes,attr"`
}

type xmlTask struct {
	ID          string     `xml:"id,attr"`
	Description string     `xml:"description,attr"`
	Action      string     `xml:"action,attr"`
	Values      []xmlValue `xml:"values>value"`
	Touches     xmlTouches `xml:"touches"`
	Budget      xmlBudget  `xml:"budget"`
}

type xmlContract struct {
	Preconditions  []xmlCondition `xml:"preconditions>condition"`
	Invariants     []xmlInvariant `xml:"invariants>invariant"`
	Postconditions []xmlCondition `xml:"postconditions>condition"`
}

type xmlMetadata struct {
	Feature string `xml:"feature,attr"`
	Created string `xml:"created,attr"`
}

type xmlPlan struct {
	XMLName  xml.Name    `xml:"plan"`
	Metadata xmlMetadata `xml:"metadata"`
	Contract xmlContract `xml:"contract"`
	Tasks    []xmlTask   `xml:"tasks>task"`
}

// Load parses the plan document at path into a *Plan. Load rejects
// structural schema violations (missing required attributes, a task with
// no id) but not semantic ones (non-positive budgets, dangling touches
// references) — those surface later in validation, per spec.md §4.3/§4.4.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading plan %s: %v", varperr.ErrIO, path, err)
	}

	var raw xmlPlan
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", varperr.ErrMalformedPlan, path, err)
	}

	if raw.Metadata.Feature == "" {
		return nil, fmt.Errorf("%w: %s: metadata missing required feature attribute", varperr.ErrMalformedPlan, path)
	}
	if len(raw.Tasks) == 0 {
		return nil, fmt.Errorf("%w: %s: plan has no tasks", varperr.ErrMalformedPlan, path)
	}

	p := &Plan{
		Metadata: Metadata{Feature: raw.Metadata.Feature, Created: raw.Metadata.Created},
	}

	p.Contract.Preconditions, err = conditionsFrom(path, raw.Contract.Preconditions)
	if err != nil {
		return nil, err
	}
	p.Contract.Postconditions, err = conditionsFrom(path, raw.Contract.Postconditions)
	if err != nil {
		return nil, err
	}
	for _, inv := range raw.Contract.Invariants {
		cond, err := conditionFrom(path, inv.xmlCondition)
		if err != nil {
			return nil, err
		}
		p.Contract.Invariants = append(p.Contract.Invariants, Invariant{Condition: cond, Critical: inv.Critical})
	}

	seenIDs := make(map[string]bool, len(raw.Tasks))
	for _, rt := range raw.Tasks {
		if rt.ID == "" {
			return nil, fmt.Errorf("%w: %s: task missing required id attribute", varperr.ErrMalformedPlan, path)
		}
		if seenIDs[rt.ID] {
			return nil, fmt.Errorf("%w: %s: duplicate task id %q", varperr.ErrMalformedPlan, path, rt.ID)
		}
		seenIDs[rt.ID] = true

		values := make(map[string]string, len(rt.Values))
		for _, v := range rt.Values {
			values[v.Key] = strings.TrimSpace(v.Value)
		}

		p.Tasks = append(p.Tasks, Task{
			ID:          rt.ID,
			Description: rt.Description,
			Action:      rt.Action,
			Values:      values,
			Touches:     Touches{Reads: []string(rt.Touches.Reads), Writes: []string(rt.Touches.Writes)},
			Budget:      Budget{Tokens: rt.Budget.Tokens, Minutes: rt.Budget.Minutes},
		})
	}

	return p, nil
}

func conditionsFrom(path string, raw []xmlCondition) ([]Condition, error) {
	out := make([]Condition, 0, len(raw))
	for _, c := range raw {
		cond, err := conditionFrom(path, c)
		if err != nil {
			return nil, err
		}
		out = append(out, cond)
	}
	return out, nil
}

func conditionFrom(path string, c xmlCondition) (Condition, error) {
	if c.ID == "" {
		return Condition{}, fmt.Errorf("%w: %s: condition missing required id attribute", varperr.ErrMalformedPlan, path)
	}
	if c.Verify == "" {
		return Condition{}, fmt.Errorf("%w: %s: condition %q missing required verify command", varperr.ErrMalformedPlan, path, c.ID)
	}
	return Condition{ID: c.ID, Description: c.Description, Verify: c.Verify}, nil
}
