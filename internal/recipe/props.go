package recipe

// IDProperty is the node property holding the identifier.
const IDProperty = "UUID"

// props accumulates node properties, leaving out unset values so a merge
// never overwrites stored data with blanks.
type props map[string]any

func newProps(id string) props {
	return props{IDProperty: id}
}

func (p props) str(key, value string) props {
	if value != "" {
		p[key] = value
	}
	return p
}

func (p props) strs(key string, values []string) props {
	if len(values) > 0 {
		p[key] = append([]string(nil), values...)
	}
	return p
}

func (p props) integer(key string, value *int64) props {
	if value != nil {
		p[key] = *value
	}
	return p
}

func (p props) number(key string, value *float64) props {
	if value != nil {
		p[key] = *value
	}
	return p
}
