package events

const (
	// ScaledUp is reported when a group's desired capacity was raised
	ScaledUp = "ScaledUp"
	// ScaledDown is reported when a group's desired capacity was lowered
	ScaledDown = "ScaledDown"

	// ScaleIgnored is reported when a decision required no change
	ScaleIgnored = "ScaleIgnored"

	// ScaleRejected is reported when a decision fell outside a group's
	// guard rails
	ScaleRejected = "ScaleRejected"

	// ScaleError is reported when a decision could not be applied
	ScaleError = "ScaleError"
)
