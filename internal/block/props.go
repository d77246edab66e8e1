package block

// Props holds a block's typed properties keyed by name. Values are
// scalars (string, bool, int, or float64); the schema registry
// validates them against the block type's declared prop specs.
//
// In a patch, a key mapped to nil resets that prop to its declared
// default; this is how "not provided" (key absent) is distinguished
// from "reset" (key present, nil).
type Props map[string]any

// GetString returns the prop as a string.
func (p Props) GetString(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetBool returns the prop as a bool.
func (p Props) GetBool(key string) (bool, bool) {
	v, ok := p[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// GetInt returns the prop as an int. JSON decoding produces float64
// numbers, so whole floats convert too.
func (p Props) GetInt(key string) (int, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

// GetFloat returns the prop as a float64.
func (p Props) GetFloat(key string) (float64, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// StringOr returns the prop as a string, or def when absent or not a
// string.
func (p Props) StringOr(key, def string) string {
	if v, ok := p.GetString(key); ok {
		return v
	}
	return def
}

// BoolOr returns the prop as a bool, or def.
func (p Props) BoolOr(key string, def bool) bool {
	if v, ok := p.GetBool(key); ok {
		return v
	}
	return def
}

// IntOr returns the prop as an int, or def.
func (p Props) IntOr(key string, def int) int {
	if v, ok := p.GetInt(key); ok {
		return v
	}
	return def
}

// Clone returns a shallow copy. A nil receiver clones to nil.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge returns a copy of p with patch applied on top: present keys
// override, nil-valued keys are removed so the schema default applies.
func (p Props) Merge(patch Props) Props {
	out := p.Clone()
	if out == nil {
		out = make(Props, len(patch))
	}
	for k, v := range patch {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}
