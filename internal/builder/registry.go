package builder

// NodeType describes one entry of the node type registry: display metadata
// plus the port shape and default config stamped onto every new node of
// that kind.
type NodeType struct {
	Kind    NodeKind
	Label   string
	Icon    string
	Inputs  []Port
	Outputs []Port

	// NewConfig returns the kind's zero-value config, or nil for kinds
	// that carry none.
	NewConfig func() NodeConfig
}

var registry = map[NodeKind]NodeType{
	KindStart: {
		Kind:    KindStart,
		Label:   "Start",
		Icon:    "play",
		Outputs: []Port{"output"},
	},
	KindAction: {
		Kind:      KindAction,
		Label:     "Action",
		Icon:      "zap",
		Inputs:    []Port{"input"},
		Outputs:   []Port{"success", "error"},
		NewConfig: func() NodeConfig { return ActionConfig{} },
	},
	KindCondition: {
		Kind:      KindCondition,
		Label:     "Condition",
		Icon:      "git-branch",
		Inputs:    []Port{"input"},
		Outputs:   []Port{"true", "false"},
		NewConfig: func() NodeConfig { return ConditionConfig{} },
	},
	KindLoop: {
		Kind:      KindLoop,
		Label:     "Loop",
		Icon:      "repeat",
		Inputs:    []Port{"input"},
		Outputs:   []Port{"loop", "complete"},
		NewConfig: func() NodeConfig { return LoopConfig{Iterations: 1} },
	},
	KindDelay: {
		Kind:      KindDelay,
		Label:     "Delay",
		Icon:      "clock",
		Inputs:    []Port{"input"},
		Outputs:   []Port{"output"},
		NewConfig: func() NodeConfig { return DelayConfig{} },
	},
	KindEnd: {
		Kind:   KindEnd,
		Label:  "End",
		Icon:   "square",
		Inputs: []Port{"input"},
	},
}

// kindOrder fixes the palette ordering for Kinds.
var kindOrder = []NodeKind{KindStart, KindAction, KindCondition, KindLoop, KindDelay, KindEnd}

// Type returns the registry entry for a kind. Kinds come from a closed
// menu, so lookups cannot miss through the public surface.
func Type(kind NodeKind) NodeType {
	return registry[kind]
}

// Kinds lists all node kinds in palette order.
func Kinds() []NodeKind {
	out := make([]NodeKind, len(kindOrder))
	copy(out, kindOrder)
	return out
}

// KnownKind reports whether kind is one of the registered node kinds.
func KnownKind(kind NodeKind) bool {
	_, ok := registry[kind]
	return ok
}

// NewNode creates a node of the given kind at the given position, stamping
// the registry's port lists and seeding a zero-value config. It is a pure
// function apart from ID generation: two nodes of the same kind always
// receive identical port shapes.
func NewNode(kind NodeKind, at Position) *Node {
	t := registry[kind]

	n := &Node{
		ID:       newID(),
		Kind:     kind,
		Label:    t.Label,
		Position: at,
		Inputs:   append([]Port(nil), t.Inputs...),
		Outputs:  append([]Port(nil), t.Outputs...),
	}
	if t.NewConfig != nil {
		n.Config = t.NewConfig()
	}
	return n
}
