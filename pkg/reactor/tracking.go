package reactor

// The evaluation stack holds the getters currently being evaluated, innermost
// last. Reads are attributed to every frame on the stack, so a getter that
// reads another getter also records the inner getter's dependencies.

// pushFrame makes g the innermost evaluating getter.
func (e *Engine) pushFrame(g *getterRecord) {
	e.stack = append(e.stack, g)
}

// popFrame removes the innermost frame. Callers defer it so the stack stays
// balanced when a getter returns an error or panics.
func (e *Engine) popFrame() {
	e.stack[len(e.stack)-1] = nil
	e.stack = e.stack[:len(e.stack)-1]
}

// track records that every evaluating getter read d.
func (e *Engine) track(d dep) {
	for _, g := range e.stack {
		g.deps.add(d)
	}
}

// trigger invalidates every getter whose registry matches d, then
// invalidates getters that read an invalidated getter's cache slot.
func (e *Engine) trigger(d dep) {
	var seen map[*getterRecord]struct{}
	queue := []dep{d}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, g := range e.getters.order {
			if !g.deps.matches(cur) {
				continue
			}
			if _, ok := seen[g]; ok {
				continue
			}
			if seen == nil {
				seen = make(map[*getterRecord]struct{})
			}
			seen[g] = struct{}{}
			if g.invalidate() {
				e.metrics.invalidated(g.name)
				e.logger.Debug("reactor: getter invalidated", "getter", g.name, "dep", cur.String())
			}
			queue = append(queue, g.slot)
		}
	}
}

// Untracked runs fn with an empty evaluation stack: reads inside fn are not
// attributed to any getter currently being evaluated.
func (e *Engine) Untracked(fn func()) {
	saved := e.stack
	e.stack = nil
	defer func() { e.stack = saved }()
	fn()
}
