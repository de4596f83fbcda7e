package resp

// FieldType is the scalar type of a positional parameter.
type FieldType int

const (
	FieldInt64 FieldType = iota
	FieldString
)

// PositionalField describes one positional slot in a ReadParameters call.
// Optional fields (Required == false) may only appear after all required
// fields in the spec's Positionals slice.
type PositionalField struct {
	Name     string
	Type     FieldType
	Required bool
}

// FlagType is the value shape of a named flag.
type FlagType int

const (
	FlagInt64 FlagType = iota
	FlagString
	FlagBool // presence-only: reading the name is the whole value.
)

// FlagField describes one recognized flag name/value shape.
type FlagField struct {
	Name string
	Type FlagType
}

// ParamValue holds whichever scalar a positional or flag resolved to.
type ParamValue struct {
	HasValue bool
	Int64    int64
	Str      []byte
	Bool     bool
}

// ParamResult is the structured outcome of ReadParameters: the populated
// positional and flag values, keyed by the Name given in their spec, plus
// how many wire arguments were consumed producing them.
type ParamResult struct {
	Positionals map[string]ParamValue
	Flags       map[string]ParamValue
	Consumed    int
}

// ReadParameters implements spec.md §4.1's mixed positional/flag argument
// reader: it consumes up to max wire arguments, filling in positionals in
// order first, then falling into flag-name/flag-value pairs once an
// optional string positional's value turns out to name a known flag (or
// once positionals run out). Arguments left over after max is reached, or
// after no more positional/flag fields apply, are left on the stream for
// the caller to discard.
func (r *Reader) ReadParameters(max int, positionals []PositionalField, flags []FlagField) (*ParamResult, error) {
	result := &ParamResult{
		Positionals: make(map[string]ParamValue, len(positionals)),
		Flags:       make(map[string]ParamValue, len(flags)),
	}

	posIndex := 0
	inFlagPhase := false

	for result.Consumed < max {
		if !inFlagPhase && posIndex < len(positionals) {
			field := positionals[posIndex]

			raw, isInt, ival, err := r.readRawArg()
			if err != nil {
				return result, err
			}
			result.Consumed++

			switch field.Type {
			case FieldInt64:
				if isInt {
					result.Positionals[field.Name] = ParamValue{HasValue: true, Int64: ival}
					posIndex++
					continue
				}
				if n, perr := parseIntLine(raw); perr == nil {
					result.Positionals[field.Name] = ParamValue{HasValue: true, Int64: n}
					posIndex++
					continue
				}
				if fl, ok := matchFlag(flags, raw); ok && !field.Required {
					inFlagPhase = true
					if err := r.consumeFlagValue(fl, result, max); err != nil {
						return result, err
					}
					posIndex = len(positionals)
					continue
				}
				// raw was already fully read by readRawArg above;
				// only its digits are invalid, so the stream stays
				// framed.
				e := newFramedErr(TagProtocol, "expected integer for parameter %q", field.Name)
				r.lastErr = e
				return result, e
			case FieldString:
				if !field.Required {
					var name []byte
					if isInt {
						name = nil
					} else {
						name = raw
					}
					if fl, ok := matchFlag(flags, name); ok {
						inFlagPhase = true
						if err := r.consumeFlagValue(fl, result, max); err != nil {
							return result, err
						}
						posIndex = len(positionals)
						continue
					}
				}
				result.Positionals[field.Name] = ParamValue{HasValue: true, Str: raw}
				posIndex++
				continue
			}
		}

		if posIndex >= len(positionals) {
			if len(flags) == 0 {
				break
			}
			raw, _, _, err := r.readRawArg()
			if err != nil {
				return result, err
			}
			result.Consumed++

			fl, ok := matchFlag(flags, raw)
			if !ok {
				// raw was already fully read by readRawArg above.
				e := newFramedErr(TagInvalidParameters, "unknown flag %q", raw)
				r.lastErr = e
				return result, e
			}
			inFlagPhase = true
			if err := r.consumeFlagValue(fl, result, max); err != nil {
				return result, err
			}
			continue
		}
	}

	return result, nil
}

// consumeFlagValue reads the value half of a non-bool flag (bool flags
// need nothing further — their presence is their value) and records it.
func (r *Reader) consumeFlagValue(fl FlagField, result *ParamResult, max int) error {
	if fl.Type == FlagBool {
		result.Flags[fl.Name] = ParamValue{HasValue: true, Bool: true}
		return nil
	}
	if result.Consumed >= max {
		// The flag name was the last argument; nothing past max is read.
		e := newFramedErr(TagProtocol, "missing value for flag %q", fl.Name)
		r.lastErr = e
		return e
	}

	raw, isInt, ival, err := r.readRawArg()
	if err != nil {
		return err
	}
	result.Consumed++

	switch fl.Type {
	case FlagInt64:
		if isInt {
			result.Flags[fl.Name] = ParamValue{HasValue: true, Int64: ival}
			return nil
		}
		n, perr := parseIntLine(raw)
		if perr != nil {
			// raw was already fully read by readRawArg above.
			e := newFramedErr(TagProtocol, "expected integer value for flag %q", fl.Name)
			r.lastErr = e
			return e
		}
		result.Flags[fl.Name] = ParamValue{HasValue: true, Int64: n}
		return nil
	default: // FlagString
		result.Flags[fl.Name] = ParamValue{HasValue: true, Str: raw}
		return nil
	}
}

// readRawArg reads one scalar wire value — integer, bulk string, or
// simple string — the three shapes a command argument can legally take.
func (r *Reader) readRawArg() (str []byte, isInt bool, ival int64, err error) {
	prefix, err := r.ReadTypePrefix()
	if err != nil {
		return nil, false, 0, err
	}
	switch prefix {
	case Integer:
		line, lerr := r.readLine(maxSimpleStringLen)
		if lerr != nil {
			return nil, false, 0, lerr
		}
		n, perr := parseIntLine(line)
		if perr != nil {
			// The ':' line is already fully consumed; only its
			// digits are invalid, so the stream stays framed.
			perr = asFramed(perr)
			r.lastErr = perr
			return nil, false, 0, perr
		}
		return nil, true, n, nil
	case BulkString:
		body, berr := r.readBulkBody()
		if berr != nil {
			return nil, false, 0, berr
		}
		if body == nil {
			// The null encoding was already fully consumed.
			e := newFramedErr(TagInvalidValue, "expected value, got null")
			r.lastErr = e
			return nil, false, 0, e
		}
		return body, false, 0, nil
	case SimpleString:
		line, lerr := r.readLine(maxSimpleStringLen)
		if lerr != nil {
			return nil, false, 0, lerr
		}
		out := make([]byte, len(line))
		copy(out, line)
		return out, false, 0, nil
	default:
		e := newErr(TagProtocol, "expected scalar argument, got %q", byte(prefix))
		r.lastErr = e
		return nil, false, 0, e
	}
}

// matchFlag looks up name against flags case-insensitively. A nil name
// never matches.
func matchFlag(flags []FlagField, name []byte) (FlagField, bool) {
	if name == nil {
		return FlagField{}, false
	}
	for _, fl := range flags {
		if equalFold(name, fl.Name) {
			return fl, true
		}
	}
	return FlagField{}, false
}
