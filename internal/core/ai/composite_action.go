package ai

var _ Action[any] = (*CompositeAction[any])(nil)

// CompositeAction runs its children one after another, one Execute per
// tick for a running child. It succeeds when every child succeeds and fails
// on the first child that does not.
type CompositeAction[C any] struct {
	*Task[C]
	actions []Action[C]
	current int
}

func NewCompositeAction[C any](name string, actions ...Action[C]) (*CompositeAction[C], error) {
	for _, a := range actions {
		if isNil(a) {
			return nil, ErrNilCollaborator
		}
	}
	ca := &CompositeAction[C]{actions: actions}
	task, err := NewTask(name, TaskHooks[C]{
		OnStart:  ca.start,
		OnUpdate: ca.step,
	})
	if err != nil {
		return nil, err
	}
	ca.Task = task
	return ca, nil
}

// Actions returns a copy of the children.
func (ca *CompositeAction[C]) Actions() []Action[C] {
	return append([]Action[C](nil), ca.actions...)
}

func (ca *CompositeAction[C]) start(t *Task[C], ctx C) {
	ca.current = 0
	ca.step(t, ctx)
}

func (ca *CompositeAction[C]) step(t *Task[C], ctx C) {
	for ca.current < len(ca.actions) {
		child := ca.actions[ca.current]
		child.Execute(ctx)
		switch child.Status() {
		case StatusRunning:
			return
		case StatusSuccess:
			ca.current++
		default:
			t.EndInFailure(ctx)
			return
		}
	}
	t.EndInSuccess(ctx)
}

func (ca *CompositeAction[C]) Clone() Action[C] {
	children := make([]Action[C], len(ca.actions))
	for i, a := range ca.actions {
		children[i] = a.Clone()
	}
	c, _ := NewCompositeAction(ca.Name(), children...)
	c.SetCooldown(ca.Cooldown())
	c.SetClock(ca.clock)
	return c
}
