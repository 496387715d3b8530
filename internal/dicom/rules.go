package dicom

import "github.com/dicomkit/dicomkit/tag"

// Action is the write-time disposition WriterRules assigns to an element.
type Action int

const (
	// ActionCopy passes the element through unchanged.
	ActionCopy Action = iota
	// ActionRemove excludes the element from the written ElementMap.
	ActionRemove
	// ActionClear replaces the value with an empty string and VL 0.
	ActionClear
	// ActionReplace substitutes a fixed replacement value.
	ActionReplace
)

// Rule pairs an Action with the replacement value ActionReplace needs.
type Rule struct {
	Action  Action
	Replace string
}

// Rules is the anonymization rule table. Keys are either a tag keyword
// (e.g. "PatientName") or canonical tag key, or a dictionary group name
// (e.g. "Meta Element"); the fallback rule is set with Default. Resolve
// picks the most specific match.
type Rules struct {
	dict *tag.Dictionary

	byKeyword  map[string]Rule
	byGroup    map[string]Rule
	defaultRule Rule
	hasDefault bool
}

// NewRules builds an empty rule table; every element copies through until
// rules are added.
func NewRules(dict *tag.Dictionary) *Rules {
	if dict == nil {
		dict = tag.Std
	}
	return &Rules{dict: dict, byKeyword: map[string]Rule{}, byGroup: map[string]Rule{}}
}

// ForKeyword sets the rule applied to elements whose dictionary keyword (or
// canonical key) equals keyword.
func (r *Rules) ForKeyword(keyword string, rule Rule) *Rules {
	r.byKeyword[keyword] = rule
	return r
}

// ForTag is a typed convenience over ForKeyword keyed by tag identity.
func (r *Rules) ForTag(t tag.Tag, rule Rule) *Rules {
	r.byKeyword[t.Key()] = rule
	return r
}

// ForGroup sets the rule applied to every element in the named dictionary
// group (e.g. "Image Presentation").
func (r *Rules) ForGroup(groupName string, rule Rule) *Rules {
	r.byGroup[groupName] = rule
	return r
}

// Default sets the fallback rule for elements matched by nothing else.
func (r *Rules) Default(rule Rule) *Rules {
	r.defaultRule = rule
	r.hasDefault = true
	return r
}

// Resolve picks the action for t.6's three-tier priority:
// (1) tag key or keyword, (2) dictionary group name, (3) default, (4) Copy.
func (r *Rules) Resolve(t tag.Tag) Rule {
	if rule, ok := r.byKeyword[t.Key()]; ok {
		return rule
	}
	if kw := t.LookupName(); kw != "" {
		if rule, ok := r.byKeyword[kw]; ok {
			return rule
		}
	}
	if entry, ok := r.dict.Lookup(t); ok {
		if rule, ok := r.byGroup[entry.GroupName]; ok {
			return rule
		}
	}
	if r.hasDefault {
		return r.defaultRule
	}
	return Rule{Action: ActionCopy}
}

// Apply returns a new ElementMap with every rule-governed transformation
// applied: ActionCopy passes through, ActionRemove drops the element,
// ActionClear empties its value, ActionReplace substitutes a fixed value.
// Insertion order of the surviving elements is preserved.
func (r *Rules) Apply(elements *ElementMap) *ElementMap {
	out := NewElementMap()
	elements.Range(func(t tag.Tag, e *Element) bool {
		rule := r.Resolve(t)
		switch rule.Action {
		case ActionRemove:
			// excluded
		case ActionClear:
			out.Insert(&Element{Tag: t, VR: e.VR, VL: DefinedVL(0), Value: ValueStrings([]string{""})})
		case ActionReplace:
			v := rule.Replace
			out.Insert(&Element{Tag: t, VR: e.VR, VL: DefinedVL(uint32(len(v))), Value: ValueString(v)})
		default:
			out.Insert(e)
		}
		return true
	})
	return out
}
