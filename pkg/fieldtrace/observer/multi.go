package observer

import "github.com/coral-mesh/fieldtrace/pkg/fieldtrace"

// Multi delivers every event to each observer in order. nil observers are
// skipped; a panic stops delivery to the remaining ones.
func Multi(observers ...fieldtrace.ErasedObserver) fieldtrace.ErasedObserver {
	var live []fieldtrace.ErasedObserver
	for _, obs := range observers {
		if obs != nil {
			live = append(live, obs)
		}
	}

	switch len(live) {
	case 0:
		return func(fieldtrace.ErasedAccessEvent, fieldtrace.AnySelfToken) {}
	case 1:
		return live[0]
	}

	return func(e fieldtrace.ErasedAccessEvent, self fieldtrace.AnySelfToken) {
		for _, obs := range live {
			obs(e, self)
		}
	}
}
