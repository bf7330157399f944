package ai

// Library groups one registry per definition kind.
type Library[C any] struct {
	Actions        *Registry[Action[C]]
	Considerations *Registry[Consideration[C]]
	Options        *Registry[*Option[C]]
	Behaviours     *Registry[*Behaviour[C]]
	Agents         *Registry[*Agent[C]]
}

func NewLibrary[C any]() *Library[C] {
	return &Library[C]{
		Actions:        NewRegistry[Action[C]]("action"),
		Considerations: NewRegistry[Consideration[C]]("consideration"),
		Options:        NewRegistry[*Option[C]]("option"),
		Behaviours:     NewRegistry[*Behaviour[C]]("behaviour"),
		Agents:         NewRegistry[*Agent[C]]("agent"),
	}
}

// Clear empties every registry.
func (l *Library[C]) Clear() {
	l.Actions.Clear()
	l.Considerations.Clear()
	l.Options.Clear()
	l.Behaviours.Clear()
	l.Agents.Clear()
}
