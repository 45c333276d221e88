package processor

import "fmt"

// OutputSetting decides what happens when a product meets a full or
// foreign output. Ordinals are persisted.
type OutputSetting int

const (
	// OutputDefault blocks production while the product does not fit.
	OutputDefault OutputSetting = iota
	// OutputVoidExcess produces anyway and discards what does not fit.
	OutputVoidExcess
	// OutputVoid discards the slot's contents and every product.
	OutputVoid
)

// OutputSettingFromOrdinal decodes a persisted ordinal; unknown values
// fall back to OutputDefault.
func OutputSettingFromOrdinal(n int64) OutputSetting {
	switch OutputSetting(n) {
	case OutputVoidExcess, OutputVoid:
		return OutputSetting(n)
	default:
		return OutputDefault
	}
}

// Next cycles Default → VoidExcess → Void.
func (o OutputSetting) Next() OutputSetting {
	return (o + 1) % 3
}

func (o OutputSetting) String() string {
	switch o {
	case OutputDefault:
		return "default"
	case OutputVoidExcess:
		return "void_excess"
	case OutputVoid:
		return "void"
	default:
		return fmt.Sprintf("output(%d)", int(o))
	}
}

// ParseOutputSetting parses a setting name.
func ParseOutputSetting(name string) (OutputSetting, error) {
	for _, o := range []OutputSetting{OutputDefault, OutputVoidExcess, OutputVoid} {
		if o.String() == name {
			return o, nil
		}
	}
	return OutputDefault, fmt.Errorf("unknown output setting %q", name)
}
