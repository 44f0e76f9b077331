package repositories

// ImportHistory answers whether a source identifier was imported before.
type ImportHistory interface {
	HasImported(sourceID string) (bool, error)
}

// SourceIndex answers whether the library holds a source identifier.
type SourceIndex interface {
	HasSource(field, id string) (bool, error)
}

// PresenceChecker decides whether a source identifier is already present.
//
// Either lookup may be nil; a checker with neither reports nothing as present.
type PresenceChecker struct {
	history ImportHistory
	library SourceIndex
	field   string
}

// NewPresenceChecker creates a PresenceChecker matching library attributes named field.
func NewPresenceChecker(history ImportHistory, library SourceIndex, field string) *PresenceChecker {
	return &PresenceChecker{history: history, library: library, field: field}
}

// Present reports whether id was imported according to history or the library.
func (p *PresenceChecker) Present(id string) (bool, error) {
	if id == "" {
		return false, nil
	}

	if p.history != nil {
		ok, err := p.history.HasImported(id)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}

	if p.library != nil {
		return p.library.HasSource(p.field, id)
	}

	return false, nil
}
