package model

// FlatElement is an element with a path breadcrumb and index links instead
// of children. Parent and End index into the flat slice it belongs to:
// the element's descendants occupy the half-open range (index, End).
type FlatElement struct {
	ID           int               `yaml:"i"              json:"i"`
	Tag          string            `yaml:"tag"            json:"tag"`
	Role         string            `yaml:"r,omitempty"    json:"r,omitempty"`
	ImplicitRole string            `yaml:"ir,omitempty"   json:"ir,omitempty"`
	Text         string            `yaml:"t,omitempty"    json:"t,omitempty"`
	Content      string            `yaml:"tc,omitempty"   json:"tc,omitempty"`
	Attrs        map[string]string `yaml:"a,omitempty"    json:"a,omitempty"`
	Bounds       [4]int            `yaml:"b"              json:"b"`
	Unmeasured   bool              `yaml:"um,omitempty"   json:"um,omitempty"`
	Focused      bool              `yaml:"f,omitempty"    json:"f,omitempty"`
	Ref          string            `yaml:"ref,omitempty"  json:"ref,omitempty"`
	Path         string            `yaml:"p,omitempty"    json:"p,omitempty"`
	Parent       int               `yaml:"-"              json:"-"`
	End          int               `yaml:"-"              json:"-"`
	Depth        int               `yaml:"-"              json:"-"`
}

// Element returns the flat element as a childless Element, so helpers
// defined on Element can be reused.
func (f FlatElement) Element() Element {
	return Element{
		ID:         f.ID,
		Tag:        f.Tag,
		Role:       f.Role,
		Text:       f.Text,
		Content:    f.Content,
		Attrs:      f.Attrs,
		Bounds:     f.Bounds,
		Unmeasured: f.Unmeasured,
		Focused:    f.Focused,
		Ref:        f.Ref,
	}
}

// EffectiveRole is the explicit role when present, else the implicit one.
func (f FlatElement) EffectiveRole() string {
	if r := ExplicitRole(f.Element()); r != "" {
		return r
	}
	return f.ImplicitRole
}

// FlattenElements converts a tree of elements into a flat list in document
// order. Each element gets a path string showing its location in the tree
// using tag names joined with " > ", its parent index (-1 for roots) and
// the end of its subtree range.
func FlattenElements(elements []Element) []FlatElement {
	var result []FlatElement
	for _, el := range elements {
		flattenRecursive(el, "", -1, 0, false, &result)
	}
	return result
}

func flattenRecursive(el Element, parentPath string, parent, depth int, inSection bool, result *[]FlatElement) {
	currentPath := el.Tag
	if parentPath != "" {
		currentPath = parentPath + " > " + el.Tag
	}

	flat := FlatElement{
		ID:           el.ID,
		Tag:          el.Tag,
		Role:         ExplicitRole(el),
		ImplicitRole: ImplicitRole(el, inSection),
		Text:         el.Text,
		Content:      el.TextContent(),
		Attrs:        el.Attrs,
		Bounds:       el.Bounds,
		Unmeasured:   el.Unmeasured,
		Focused:      el.Focused,
		Ref:          el.Ref,
		Path:         currentPath,
		Parent:       parent,
		Depth:        depth,
	}
	idx := len(*result)
	*result = append(*result, flat)

	childSection := inSection || IsSectioning(el.Tag)
	for _, child := range el.Children {
		flattenRecursive(child, currentPath, idx, depth+1, childSection, result)
	}
	(*result)[idx].End = len(*result)
}
