package editor

// Changed reports whether any tracked field differs between the
// last-synced values and the edited values. Numeric fields compare as
// floats so formatting differences never register as edits. Callers
// must pass the last-synced original, not a value from an earlier edit
// pass, or changes land silently after a partial save.
func Changed(original, edited Fields) bool {
	return len(ChangedFields(original, edited)) > 0
}

// ChangedFields lists which tracked fields differ, in tracked-field
// order. Used to flag modified cells in the table.
func ChangedFields(original, edited Fields) []Field {
	var changed []Field
	for _, field := range trackedFields {
		if fieldDiffers(field, original, edited) {
			changed = append(changed, field)
		}
	}
	return changed
}

func fieldDiffers(field Field, a, b Fields) bool {
	switch field {
	case FieldDescription:
		return a.Description != b.Description
	case FieldQuantity:
		return a.Quantity != b.Quantity
	case FieldPrice:
		return a.Price != b.Price
	case FieldLaborHours:
		return a.LaborHours != b.LaborHours
	case FieldHardware:
		return a.Hardware != b.Hardware
	default:
		return false
	}
}
