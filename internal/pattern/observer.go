package pattern

import "regexp"

// registryFieldPattern matches struct field names that look like an
// observer registry: listeners/handlers/observers/callbacks/subscribers.
var registryFieldPattern = regexp.MustCompile(`(?i)^(listeners|handlers|observers|callbacks|subscribers)$`)

// ObserverConfig mirrors the observer_detection configuration section.
type ObserverConfig struct {
	Enabled              bool
	RegistryFieldPatterns []string
	MinConfidence        float64
}

// DefaultObserverConfig returns spec-mandated defaults.
func DefaultObserverConfig() ObserverConfig {
	return ObserverConfig{Enabled: true, MinConfidence: 0.8}
}

// IsRegistryField reports whether a struct field's name and declared type
// look like an observer registry: a collection of callables or trait
// objects, named per the configured patterns.
func IsRegistryField(cfg ObserverConfig, fieldName, fieldType string) bool {
	if !cfg.Enabled || !isCollectionOfCallables(fieldType) {
		return false
	}
	if registryFieldPattern.MatchString(fieldName) {
		return true
	}
	for _, p := range cfg.RegistryFieldPatterns {
		if matched, _ := regexp.MatchString(p, fieldName); matched {
			return true
		}
	}
	return false
}

func isCollectionOfCallables(fieldType string) bool {
	callableMarkers := []string{"dyn ", "Box<dyn", "Fn(", "FnMut(", "FnOnce("}
	for _, m := range callableMarkers {
		if contains(fieldType, m) {
			return true
		}
	}
	return false
}

func contains(s, sub string) bool {
	return len(s) >= len(sub) && indexOf(s, sub) >= 0
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

// DispatchHints are the frontend-reported shape of a function body needed
// to recognize an observer-dispatch loop.
type DispatchHints struct {
	HasLoopOverRegistry bool
	InvokesEachElement  bool
	BreaksOnFirstElement bool
}

// IsObserverDispatcher reports whether a function's body is a dispatch loop
// over a recognized registry field: iterates the whole registry (no early
// break on the first element) and invokes a method/closure on each element.
func IsObserverDispatcher(hints DispatchHints) bool {
	return hints.HasLoopOverRegistry && hints.InvokesEachElement && !hints.BreaksOnFirstElement
}
