package align

import "fmt"

// AlignmentError is returned by Strict when an edited token cannot be found
// in the unconsumed part of the original sequence.
type AlignmentError struct {
	Token          string
	EditedIndex    int
	ExistsAnywhere bool
	ExistsInSuffix bool
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf(
		"edit is not deletion-only: edited token %d (%q) has no match in order (exists_anywhere=%t, exists_in_remaining_suffix=%t)",
		e.EditedIndex, e.Token, e.ExistsAnywhere, e.ExistsInSuffix,
	)
}

// EmptySelectionError is returned when index ranges leave no words.
type EmptySelectionError struct {
	Mode          RangeMode
	OriginalCount int
}

func (e *EmptySelectionError) Error() string {
	if e.Mode == DeleteRanges {
		return fmt.Sprintf("delete ranges removed all %d words; refusing empty output", e.OriginalCount)
	}
	return fmt.Sprintf("keep ranges selected none of %d words; refusing empty output", e.OriginalCount)
}

// OutOfRangeError is returned when a supplied range falls outside the
// original sequence or cannot be read as a range at all.
type OutOfRangeError struct {
	Field string
	Start int
	End   int
	Total int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("out-of-range %s: [%d, %d] not within [0, %d]", e.Field, e.Start, e.End, e.Total-1)
}
