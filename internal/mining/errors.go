package mining

import "errors"

var (
	// ErrDataFormat reports input records that cannot be turned into a basket
	// matrix, such as a negative quantity.
	ErrDataFormat = errors.New("mining: data format error")

	// ErrInvalidThreshold reports a support, confidence or lift threshold outside
	// its accepted range.
	ErrInvalidThreshold = errors.New("mining: invalid threshold")

	// ErrInvariantViolation reports an internal inconsistency, for example a rule
	// antecedent whose support is missing from the itemset table.
	ErrInvariantViolation = errors.New("mining: invariant violation")

	// ErrInvalidSortKey reports an unknown rule ordering.
	ErrInvalidSortKey = errors.New("mining: invalid sort key")
)
