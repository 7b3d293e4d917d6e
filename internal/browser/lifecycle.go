package browser

// Lifecycle event names reported by the page domain
const (
	lifecycleInit        = "init"
	lifecycleNetworkIdle = "networkIdle"
)

// idleWatch follows the lifecycle events of one frame and reports its
// networkIdle once a new document has started loading in it. Events of
// other frames, and a networkIdle left over from the previous document, are
// ignored. With no frame set, the first frame to report init is followed.
type idleWatch struct {
	frame   string
	started bool
}

// observe feeds one event and reports whether the frame is now idle
func (w *idleWatch) observe(frame, name string) bool {
	if w.frame == "" {
		if name != lifecycleInit {
			return false
		}
		w.frame = frame
	}
	if frame != w.frame {
		return false
	}

	switch name {
	case lifecycleInit:
		w.started = true
	case lifecycleNetworkIdle:
		return w.started
	}
	return false
}
